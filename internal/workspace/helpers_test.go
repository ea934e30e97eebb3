package workspace

import (
	"os"

	"github.com/kyleking/sqlitegui/internal/compiler"
)

func copyDatabase(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, data, 0o644)
}

func updateAllTotals() compiler.UpdateInput {
	return compiler.UpdateInput{
		Table: "orders",
		Set:   []compiler.Assignment{{Field: "total", Value: 0}},
	}
}
