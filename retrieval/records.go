package retrieval

import (
	"newsgraph/aql"
	"newsgraph/types"
)

// trimRecords keeps at most one read and one watch entry per record.
func trimRecords(recs []types.RelatedArticle) []types.RelatedArticle {
	for i := range recs {
		recs[i].Read = types.FirstEntry(recs[i].Read)
		recs[i].Watch = types.FirstEntry(recs[i].Watch)
	}
	return recs
}

// stripRecords is trimRecords plus removal of the heavy attributes. The query
// already unsets them; this holds the shape even if a template drifts.
func stripRecords(recs []types.RelatedArticle) []types.RelatedArticle {
	for i := range recs {
		r := &recs[i]
		r.Default = r.Default.Without(aql.DocumentUnsetFields...)
		r.Read = stripEntries(types.FirstEntry(r.Read), aql.DocumentUnsetFields)
		r.Watch = stripEntries(types.FirstEntry(r.Watch), aql.WatchUnsetFields)
	}
	return recs
}

func stripEntries(entries []types.Entry, fields []string) []types.Entry {
	for i := range entries {
		entries[i] = entries[i].Without(fields...)
	}
	return entries
}
