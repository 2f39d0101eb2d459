// Package queue defines message payloads exchanged over the message broker.
package queue

// ImageCleanupEvent is published when a campground is deleted or
// individual images are removed from one. It carries the storage keys
// to purge so the consumer never has to query the primary database.
type ImageCleanupEvent struct {
    CampgroundID string   `json:"campground_id"`
    StorageKeys  []string `json:"storage_keys"`
    RequestedAt  string   `json:"requested_at"`
}
