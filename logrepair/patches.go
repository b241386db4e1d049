package logrepair

// Patch is a single-line byte substitution applied verbatim wherever Old
// occurs in the log.
type Patch struct {
	Old, New []byte
}

// MultilinePatch folds Span consecutive lines into one buffer (each line
// trimmed of surrounding whitespace and joined without newlines), and when that
// buffer contains Match, replaces the Span lines with the single
// Replacement line.
type MultilinePatch struct {
	Identifier  []byte
	Match       []byte
	Replacement []byte
	Span        int
}

// Patches is the fixed single-line substitution list, compiled in per spec
// §9 ("banned-ability list and multi-line patch list are small enough to
// compile in as constants"), grounded on the reference's constants.PATCHES.
var Patches = []Patch{
	{
		Old: []byte("Rehona, Sister of the Qowat Milat"),
		New: []byte("Rehona - Sister of the Qowat Milat"),
	},
}

// MultilinePatches is the fixed multi-line fold-and-replace rule list,
// grounded on the reference's constants.MULTILINE_PATCHES.
var MultilinePatches = []MultilinePatch{
	{
		Identifier:  []byte(`"Nanite Infection`),
		Match:       []byte("Nanite Infection<br>Causes damage to nearby players and Kobayashi Maru"),
		Replacement: []byte(`"Nanite Infection - Causes damage to nearby players and Kobayashi Maru"` + "\n"),
		Span:        3,
	},
}
