// Package logtail reads the end of the client's own log file for the UI log
// view.
//
// Read keeps a ring buffer of maxLines entries, so memory stays O(maxLines)
// however large the file grows:
//
//	1. Allocate ring buffer of size maxLines
//	2. For each line: store at idx, advance idx (wrapping), count++
//	3. Fewer than maxLines seen: return the first count entries
//	4. Otherwise: return the buffer starting at idx (the oldest line)
//
// A missing file is not an error; the view simply shows nothing yet.
//
// Parse splits lines written by charmbracelet/log's text formatter into time,
// level, prefix and message so the UI can color them. Lines in any other
// shape are returned whole in Message.
package logtail
