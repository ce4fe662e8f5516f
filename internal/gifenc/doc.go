// Package gifenc streams still frames into an animated GIF89a file.
//
// The header and the NETSCAPE2.0 loop extension are written when the encoder
// is created, each WriteFrame appends one image block with its own local
// palette, and Close writes the trailer. Only the frame being encoded is held
// in memory.
package gifenc
