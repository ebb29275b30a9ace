package utils

/**
 * This file contains utility functions to format the keys for Redis
 * (key, value) pairs. It avoids having to call "fmt.Sprintf(...)"
 * with the same format spec every time, potentially confusing the key format.
 */

import "fmt"

// Whole collection blob, e.g. "collection:game_invites"
func FormatCollectionKey(name string) string {
	return fmt.Sprintf("collection:%s", name)
}

// Notification list of a user
func FormatInboxKey(userId string) string {
	return fmt.Sprintf("inbox:%s", userId)
}

// Channel the user's events are published on
func FormatEventsChannel(userId string) string {
	return fmt.Sprintf("events:%s", userId)
}
