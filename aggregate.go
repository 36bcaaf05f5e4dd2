package metard

// Aggregate returns the union of field names across records, in the order
// they are first seen.
func Aggregate(records ...Record) FieldSet {
	var fs FieldSet
	for _, rec := range records {
		for _, k := range rec.keys {
			fs.add(k)
		}
	}
	return fs
}

// Fill returns a copy of rec holding every name in keys. Names rec lacks are
// set to placeholder and appended in the set's order. rec is not modified.
func Fill(rec Record, keys FieldSet, placeholder string) Record {
	out := rec.Clone()
	for _, k := range keys.names {
		if !out.Has(k) {
			out.Set(k, placeholder)
		}
	}
	return out
}

// Normalize back-fills every record against the batch's field set so all
// records share the same keys.
func Normalize(records []Record, placeholder string) (FieldSet, []Record) {
	fs := Aggregate(records...)
	batch := make([]Record, len(records))
	for i, rec := range records {
		batch[i] = Fill(rec, fs, placeholder)
	}
	return fs, batch
}
