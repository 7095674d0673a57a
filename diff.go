package localeflow

// DiffResult describes how the translatable segments of two document
// versions differ. Segments are matched by path; a matched path with a
// different text hash is a modification.
type DiffResult struct {
	// Added contains segments present only in the new version.
	Added []Segment

	// Removed contains segments present only in the old version.
	Removed []Segment

	// Unchanged contains segments identical in both versions.
	Unchanged []Segment

	// Modified contains pairs whose path matched but whose text changed.
	Modified []ModifiedSegment
}

// ModifiedSegment is a segment whose text changed between versions.
type ModifiedSegment struct {
	Old Segment
	New Segment
}

// DiffStats contains summary counts for a diff.
type DiffStats struct {
	Added     int
	Removed   int
	Unchanged int
	Modified  int
}

// Stats returns summary statistics for the diff.
func (d *DiffResult) Stats() DiffStats {
	return DiffStats{
		Added:     len(d.Added),
		Removed:   len(d.Removed),
		Unchanged: len(d.Unchanged),
		Modified:  len(d.Modified),
	}
}

// HasChanges reports whether any segment was added, removed, or modified.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

// NeedsTranslation returns the segments a regeneration would actually send
// to the provider: new segments plus the new side of modifications.
// Unchanged segments are served from translation memory.
func (d *DiffResult) NeedsTranslation() []Segment {
	out := make([]Segment, 0, len(d.Added)+len(d.Modified))
	out = append(out, d.Added...)
	for _, m := range d.Modified {
		out = append(out, m.New)
	}
	return out
}

// DiffSegments compares the segment lists of two document versions. Useful
// for previewing what a source edit will cost before enqueueing jobs.
func DiffSegments(oldSegments, newSegments []Segment) *DiffResult {
	result := &DiffResult{}

	oldByPath := make(map[string]Segment, len(oldSegments))
	for _, seg := range oldSegments {
		oldByPath[seg.Path] = seg
	}
	newPaths := make(map[string]bool, len(newSegments))

	for _, seg := range newSegments {
		newPaths[seg.Path] = true
		old, ok := oldByPath[seg.Path]
		switch {
		case !ok:
			result.Added = append(result.Added, seg)
		case old.Hash == seg.Hash:
			result.Unchanged = append(result.Unchanged, seg)
		default:
			result.Modified = append(result.Modified, ModifiedSegment{Old: old, New: seg})
		}
	}

	for _, seg := range oldSegments {
		if !newPaths[seg.Path] {
			result.Removed = append(result.Removed, seg)
		}
	}

	return result
}
