// Package tui is the terminal front end of a review session.
//
// [Terminal] implements review.UI. Depending on its [Decider] it confirms
// proposals in a full-screen Bubble Tea view ([Confirm]), with a line
// prompt, automatically, or not at all (dry run). [Picker] lets the user
// choose a review mode before the session starts.
package tui
