package data

import (
	_ "embed"
)

//go:embed seed/suppliers.csv
var SeedSuppliersCSV string
