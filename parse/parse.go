package parse

import "github.com/fwojciec/pkgcat"

// Sections parses every record of every section in corpus order.
// Entry.Position is the record's index across the whole document, so
// positions stay stable when a neighboring record is rejected.
func Sections(sections []pkgcat.RawSection) ([]*pkgcat.Entry, []pkgcat.Defect) {
	var entries []*pkgcat.Entry
	var defects []pkgcat.Defect
	position := 0
	for _, section := range sections {
		for _, rec := range section.Records {
			if rec.Category == "" {
				rec.Category = section.Heading
			}
			entry, ds := Record(rec)
			defects = append(defects, ds...)
			if entry != nil {
				entry.Position = position
				entries = append(entries, entry)
			}
			position++
		}
	}
	return entries, defects
}
