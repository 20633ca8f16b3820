package reports

import (
	"fmt"
	"time"
)

// Range es un intervalo semiabierto [StartUnix, EndUnix) sobre la
// marca de creación de las ventas.
type Range struct {
	StartUnix int64
	EndUnix   int64
}

const dayFormat = "2006-01-02"

// DayRange construye el rango para días calendario locales: inicio
// inclusivo a las 00:00 de startDate y fin exclusivo a las 00:00 del
// día siguiente a endDate, ambos en loc.
func DayRange(startDate, endDate string, loc *time.Location) (Range, error) {
	start, err := time.ParseInLocation(dayFormat, startDate, loc)
	if err != nil {
		return Range{}, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.ParseInLocation(dayFormat, endDate, loc)
	if err != nil {
		return Range{}, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	if end.Before(start) {
		return Range{}, fmt.Errorf("end date %s before start date %s", endDate, startDate)
	}
	return Range{
		StartUnix: start.Unix(),
		EndUnix:   end.AddDate(0, 0, 1).Unix(),
	}, nil
}

// LastDays: atajo para el rango por defecto de la vista de reportes
// (hoy incluido).
func LastDays(n int, loc *time.Location) Range {
	now := time.Now().In(loc)
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -n-1)
	return Range{StartUnix: start.Unix(), EndUnix: end.Unix()}
}
