package xarc

// ValidationSink records validation failures against the polymorphic
// role name. Implemented by the host's validation layer.
type ValidationSink interface {
	AddError(role string, err error)
}

// ValidateExclusive checks the exclusivity invariant against the given
// column-value snapshot. It returns nil when exactly one declared column
// is set, and an *ExclusivityError otherwise. The error is attached to
// the role, not to an individual column. This is a courtesy check for
// write-gating: the generated trigger remains the authoritative
// enforcement, since direct writes bypass the application layer.
func (m *Mapping) ValidateExclusive(values map[string]any) error {
	return m.validateKey(m.Resolve(values))
}

// ValidateReader is ValidateExclusive over a live attribute reader.
func (m *Mapping) ValidateReader(r AttributeReader) error {
	return m.validateKey(m.ResolveReader(r))
}

// ReportTo validates the snapshot and records any failure on the sink.
// It reports whether the snapshot passed, for use in a host pre-save
// pipeline that accumulates errors rather than aborting.
func (m *Mapping) ReportTo(sink ValidationSink, values map[string]any) bool {
	if err := m.ValidateExclusive(values); err != nil {
		sink.AddError(m.role, err)
		return false
	}
	return true
}

func (m *Mapping) validateKey(ak ActiveKey) error {
	if ak.State == StateResolved {
		return nil
	}
	return &ExclusivityError{
		Table:   m.table,
		Role:    m.role,
		Keys:    m.Keys(),
		Columns: ak.Columns,
	}
}
