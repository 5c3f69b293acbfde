package matakuliah

import "unicode/utf16"

// CourseColors is the palette new mata kuliah are coloured from.
var CourseColors = []string{
	"#dc3c3c", "#e05a1f", "#c99a00", "#18a558", "#1098ad", "#3a5edb",
	"#4b4fd6", "#8b3fd6", "#d63384", "#d7264f", "#059669", "#0284c7",
	"#4f46e5", "#7c3aed", "#c026d3", "#db2777", "#ea580c", "#65a30d",
}

// CourseColor picks a stable palette colour for a praktikum name.
// The hash runs over UTF-16 code units with 32-bit shifts so existing colours stay the same.
func CourseColor(name string) string {
	var h int64
	for _, c := range utf16.Encode([]rune(name)) {
		h = int64(c) + int64(int32(h)<<5) - h
	}
	if h < 0 {
		h = -h
	}
	return CourseColors[h%int64(len(CourseColors))]
}
