package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rendis/gofind/internal/model"
)

var csvHeader = []string{
	"name", "official", "cca3", "region", "subregion", "capital",
	"population", "languages", "lat", "lng",
}

// WriteCSV writes countries as CSV with a header row.
func WriteCSV(w io.Writer, countries []model.Country) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, c := range countries {
		lat, lng := "", ""
		if la, ln, ok := c.Coordinates(); ok {
			lat = strconv.FormatFloat(la, 'f', 4, 64)
			lng = strconv.FormatFloat(ln, 'f', 4, 64)
		}
		row := []string{
			c.Name.Common,
			c.Name.Official,
			c.CCA3,
			c.Region,
			c.Subregion,
			strings.Join(c.Capital, ", "),
			strconv.FormatInt(c.Population, 10),
			JoinLanguages(c),
			lat,
			lng,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing %q: %w", c.Name.Common, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
