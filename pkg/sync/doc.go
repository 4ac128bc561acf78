/*
The sync package mirrors addon directory trees on the local filesystem.

CopyTree makes the destination tree contain every file in the source tree.
It's a single pass with no diffing: every file is copied, and files that only
exist in the destination are left alone. DeleteTree removes a tree, and
RenameExtension renames files in place.

None of the operations are atomic. A failure or a concurrent writer halfway
through leaves a partially mirrored tree on disk. Callers that need the swap
to look atomic should stage into a temporary directory first, like
pkg/install does.

The operations don't check whether files are locked. That's the job of
pkg/lockprobe, so that callers can decide when to retry.
*/
package sync
