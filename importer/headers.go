package importer

// Row is one parsed spreadsheet row, raw header name to raw cell value.
type Row map[string]string

// Canonical column names and the header variants accepted for each.
// Variants are compared in slug form, so accent and punctuation
// differences in the file do not matter.
const (
	colPrimaryCode   = "ean"
	colInternalCode  = "codigo_articulo"
	colDescription   = "descripcion"
	colUnitsPerCase  = "unidades_por_bulto"
	colWeighable     = "pesable"
	colWeighableUnit = "pesable_por_unidad"
)

var headerVariants = map[string][]string{
	colPrimaryCode:   {"ean"},
	colInternalCode:  {"codigo_articulo", "codigo", "codarticulo", "codigo_interno", "plu"},
	colDescription:   {"descripcion", "desc"},
	colUnitsPerCase:  {"unidades_por_bulto", "unidades_por_paquete", "uxb", "unidades_paquete", "unidadesxbolsa"},
	colWeighable:     {"pesable"},
	colWeighableUnit: {"pesable_x_un", "pesable_por_unidad", "pesablexun", "pesable_x_unidad"},
}

var requiredColumns = []string{colPrimaryCode, colInternalCode, colDescription, colUnitsPerCase}

// pick returns the raw value of a canonical column, searching the row's
// slugged headers for any accepted variant.
func pick(row Row, canonical string) (string, bool) {
	slugged := make(map[string]string, len(row))
	for k, v := range row {
		slugged[Slug(k)] = v
	}
	for _, variant := range headerVariants[canonical] {
		if v, ok := slugged[variant]; ok {
			return v, true
		}
	}
	return "", false
}
