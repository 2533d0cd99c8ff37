package blume

import (
	"fmt"
	"strings"
)

// row renders one table row with the given cell texts.
func row(cells ...string) string {
	var b strings.Builder
	b.WriteString("<tr>")
	for _, c := range cells {
		fmt.Fprintf(&b, "<td>%s</td>", c)
	}
	b.WriteString("</tr>")
	return b.String()
}

// fullRow renders a 15-cell row whose first cell is sensorCell and whose
// measurement cells are "1" … "14" except where overridden.
func fullRow(sensorCell string, overrides map[int]string) string {
	cells := []string{sensorCell}
	for i := 1; i <= 14; i++ {
		if v, ok := overrides[i]; ok {
			cells = append(cells, v)
			continue
		}
		cells = append(cells, fmt.Sprintf("%d", i))
	}
	return row(cells...)
}

func page(rows ...string) string {
	return `<html><head><title>Tageswerte</title></head><body>
<table class="datenhellgrauklein">
<tr><th>Station</th><th>PM10</th></tr>
` + strings.Join(rows, "\n") + `
</table>
<table class="andere"><tr>` + strings.Repeat("<td>999</td>", 15) + `</tr></table>
</body></html>`
}
