// Package ctrees contains code for parsing Rockstar/Consistent-Trees halo
// merger tree files (tree_X_Y_Z.dat).  Briefly, a tree file consists of one
// header line naming the columns, followed by one block of
// whitespace-delimited numeric rows per merger tree, each block introduced
// by a comment line.  For example:
//
//	#scale(0) id(1) desc_scale(2) desc_id(3) num_prog(4) ...
//	#tree 3060299107
//	0.0993 3060299107 0.1030 3060310776 1 ...
//	0.0993 3060299108 0.1030 3060310776 1 ...
//	#tree 3060312507
//	0.0993 3060312507 0.1030 3060321761 1 ...
//
// Tree files routinely contain dozens of columns and individual blocks can
// run to gigabytes, so the package never materializes a block: callers
// resolve the column names they want against the header once per file
// (Resolve), then either stream blocks sequentially (Scanner) or read
// individual blocks at known byte offsets (ReadBlock), with offsets
// typically supplied by an external tree location index.  Parsed values
// land in a BufferSet, caller-described growable storage that supports both
// parallel-array and packed-struct row layouts.
package ctrees
