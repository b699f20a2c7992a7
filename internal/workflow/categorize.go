package workflow

// Directory names the Splitter routes records into. CategorySynthetic and
// CategoryExternal are also the reserved names the Consolidator skips when
// walking the repository tree, since those records arrive via their own
// line-delimited streams.
const (
	CategorySynthetic     = "synthetic"
	CategoryExternal      = "external"
	CategoryUncategorized = "uncategorized"
)

// Destination is where a record lands in the split output tree:
// outputRoot/Category, or outputRoot/Category/Subfolder when a
// subfolder is set.
type Destination struct {
	Category  string
	Subfolder string
}

// Categorize routes a record to its destination directory.
//
// Decision order, first match wins:
//  1. generated or archetype-tagged records are synthetic, grouped by
//     archetype when one is present
//  2. external-community records go to external
//  3. records carrying their own category keep it
//  4. everything else is uncategorized
//
// This is the exact inverse of how the Consolidator assigns category and
// meta.source, so a consolidate/split round trip is category-stable for
// repository records and redistributes pre-merged synthetic/external ones.
// Categorize is a pure function of its input.
func Categorize(rec Record) Destination {
	if rec.Generated() || rec.Archetype() != "" {
		return Destination{Category: CategorySynthetic, Subfolder: rec.Archetype()}
	}
	if rec.Source() == SourceExternal {
		return Destination{Category: CategoryExternal}
	}
	if rec.Category != "" {
		return Destination{Category: rec.Category}
	}
	return Destination{Category: CategoryUncategorized}
}
