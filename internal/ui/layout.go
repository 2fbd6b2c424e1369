package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutMinWidth is the narrowest width the main view lays out for.
	LayoutMinWidth = 40
)

// Chrome rows: header, progress line, keyword input, tab bar, status line.
const chromeRows = 5

const (
	// DefaultUIInterval is how often the model reads the tracker.
	DefaultUIInterval = time.Second

	// FlashDuration is how long a notice stays in the status line.
	FlashDuration = 5 * time.Second

	// ActionTimeout bounds a single user-triggered request.
	ActionTimeout = 20 * time.Second

	// PostPreviewRunes caps the rendered content of the selected post.
	PostPreviewRunes = 4000
)
