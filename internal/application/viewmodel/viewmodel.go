// Package viewmodel contiene las derivaciones puras que las páginas calculan sobre los
// items de un recurso: búsqueda, conteos por estado, agregados por día o mes y rankings.
// Ninguna función hace I/O ni modifica el slice de entrada.
package viewmodel

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FilterBySearch devuelve los items cuyo texto en alguno de fields contiene query,
// sin distinguir mayúsculas. Una query vacía devuelve una copia de todos.
func FilterBySearch[T any](items []T, query string, fields ...func(T) string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if q == "" || matches(it, q, fields) {
			out = append(out, it)
		}
	}
	return out
}

func matches[T any](it T, q string, fields []func(T) string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f(it)), q) {
			return true
		}
	}
	return false
}

// CountBy cuenta items por la clave que devuelve key.
func CountBy[T any, K comparable](items []T, key func(T) K) map[K]int {
	out := make(map[K]int)
	for _, it := range items {
		out[key(it)]++
	}
	return out
}

// ActiveCounts particiona en activos e inactivos.
func ActiveCounts[T any](items []T, isActive func(T) bool) (active, inactive int) {
	for _, it := range items {
		if isActive(it) {
			active++
		} else {
			inactive++
		}
	}
	return active, inactive
}

// Bucket agregado de una serie para gráficos.
type Bucket struct {
	Label string          `json:"label"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// BucketByWeekday agrupa por día de la semana UTC (domingo primero), en la misma
// zona que BucketByMonth. Siempre devuelve los siete días, vacíos incluidos.
func BucketByWeekday[T any](items []T, at func(T) time.Time, value func(T) decimal.Decimal) []Bucket {
	out := make([]Bucket, 7)
	for i := range out {
		out[i] = Bucket{Label: weekdayLabels[i], Total: decimal.Zero}
	}
	for _, it := range items {
		t := at(it)
		if t.IsZero() {
			continue
		}
		b := &out[t.UTC().Weekday()]
		b.Count++
		if value != nil {
			b.Total = b.Total.Add(value(it))
		}
	}
	return out
}

// BucketByMonth agrupa por mes UTC ("2006-01") en orden cronológico; solo meses con datos.
func BucketByMonth[T any](items []T, at func(T) time.Time, value func(T) decimal.Decimal) []Bucket {
	idx := make(map[string]int)
	var out []Bucket
	for _, it := range items {
		t := at(it)
		if t.IsZero() {
			continue
		}
		label := t.UTC().Format("2006-01")
		i, ok := idx[label]
		if !ok {
			i = len(out)
			idx[label] = i
			out = append(out, Bucket{Label: label, Total: decimal.Zero})
		}
		out[i].Count++
		if value != nil {
			out[i].Total = out[i].Total.Add(value(it))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Label < out[b].Label })
	return out
}

// TopN devuelve los n primeros según less (orden estable). No toca items.
func TopN[T any](items []T, n int, less func(a, b T) bool) []T {
	cp := append(make([]T, 0, len(items)), items...)
	sort.SliceStable(cp, func(i, j int) bool { return less(cp[i], cp[j]) })
	if n >= 0 && n < len(cp) {
		cp = cp[:n]
	}
	return cp
}

// SumDecimal suma value sobre items.
func SumDecimal[T any](items []T, value func(T) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(value(it))
	}
	return total
}
