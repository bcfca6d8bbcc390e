package form

// Resolver unifies alias groups so every spelling of a field carries the
// same value.
type Resolver struct {
	groups []AliasGroup
	index  map[string]int
}

// NewResolver indexes the alias groups. Keys are normalized the same way
// submitted keys are, so a group written in NFD still matches.
func NewResolver(groups []AliasGroup) *Resolver {
	r := &Resolver{
		groups: make([]AliasGroup, 0, len(groups)),
		index:  make(map[string]int),
	}
	for _, g := range groups {
		norm := make(AliasGroup, 0, len(g))
		for _, key := range g {
			key = NormalizeKey(key)
			if key == "" {
				continue
			}
			if _, dup := r.index[key]; dup {
				continue
			}
			r.index[key] = len(r.groups)
			norm = append(norm, key)
		}
		if len(norm) > 0 {
			r.groups = append(r.groups, norm)
		}
	}
	return r
}

// Resolve returns a copy of rec in which each group's members all hold the
// first non-empty value found in priority order. Groups with no value are
// blanked. Keys outside every group pass through. Resolve is idempotent.
func (r *Resolver) Resolve(rec Record) Record {
	out := rec.Clone()
	for _, g := range r.groups {
		value := ""
		for _, key := range g {
			if v := rec.Get(key); v != "" {
				value = v
				break
			}
		}
		for _, key := range g {
			if value == "" {
				if _, ok := out[key]; ok {
					out[key] = ""
				}
				continue
			}
			out[key] = value
		}
	}
	return out
}

// Canonical returns the canonical key for key, or key itself when it
// belongs to no group.
func (r *Resolver) Canonical(key string) string {
	key = NormalizeKey(key)
	if i, ok := r.index[key]; ok {
		return r.groups[i].Canonical()
	}
	return key
}

// Members returns every key equivalent to key, canonical first.
func (r *Resolver) Members(key string) []string {
	key = NormalizeKey(key)
	if i, ok := r.index[key]; ok {
		return append([]string(nil), r.groups[i]...)
	}
	return []string{key}
}

// Lookup returns the first non-empty value across the group of key.
func (r *Resolver) Lookup(rec Record, key string) string {
	for _, k := range r.Members(key) {
		if v := rec.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// Set writes value to every member of key's group. Blank values are
// ignored so a lookup miss never clobbers submitted data.
func (r *Resolver) Set(rec Record, key, value string) {
	if value == "" {
		return
	}
	for _, k := range r.Members(key) {
		rec[k] = value
	}
}

// Clear blanks every member of key's group.
func (r *Resolver) Clear(rec Record, key string) {
	for _, k := range r.Members(key) {
		if _, ok := rec[k]; ok {
			rec[k] = ""
		}
	}
}
