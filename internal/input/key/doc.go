// Package key defines keyboard events shared by the presenter and the
// navigation controller.
//
//   - Key: a special key or KeyRune for characters
//   - Modifier: Ctrl, Alt, Shift and Meta bits
//   - Event: one key press
//
// FromTcell converts terminal key events into Event values so the
// navigation controller does not depend on the terminal library.
package key
