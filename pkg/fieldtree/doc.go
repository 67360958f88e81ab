// Package fieldtree holds the editable field forest behind the schema editor.
// Nodes are values and every mutation returns a new Forest: the node at the
// target path and each of its ancestors are rebuilt while untouched siblings
// are shared with the previous snapshot. Callers can therefore keep old
// forests around (undo buffers, render snapshots) and compare root identity to
// detect edits. Nodes are addressed by Path, a slice of indices into the root
// and each object's properties, with ItemIndex selecting an array's item slot.
package fieldtree
