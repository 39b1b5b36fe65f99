package emberfmt

import "fmt"

// File naming for one segment's files under this format. Postings, terms
// dictionaries, norms, and doc-values are field-scoped, so the field
// number is embedded in the suffix; field-infos and stored fields are
// one file (pair) per segment.

func FieldInfosFile(segment string) string { return segment + ".fnm" }

func StoredFieldsDataFile(segment string) string { return segment + ".fdt" }

func StoredFieldsIndexFile(segment string) string { return segment + ".fdx" }

func LiveDocsFile(segment string, gen int64) string { return fmt.Sprintf("%s_%d.liv", segment, gen) }

func PostingsFile(segment string, fieldNumber int) string {
	return fmt.Sprintf("%s_%d.pst", segment, fieldNumber)
}

func TermsDictFile(segment string, fieldNumber int) string {
	return fmt.Sprintf("%s_%d.tmd", segment, fieldNumber)
}

func NormsFile(segment string, fieldNumber int) string {
	return fmt.Sprintf("%s_%d.nvd", segment, fieldNumber)
}

func DocValuesFile(segment string, fieldNumber int) string {
	return fmt.Sprintf("%s_%d.dvd", segment, fieldNumber)
}
