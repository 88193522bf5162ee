package service

import (
	"math"
	"strings"
)

const (
	earthRadiusKm = 6371.0

	// unknownCityDistanceKm is used when either city is missing from the table
	// and the names differ.
	unknownCityDistanceKm = 100.0
)

type coordinates struct {
	lat, lng float64
}

var cityCoordinates = map[string]coordinates{
	"bishkek":     {42.8746, 74.5698},
	"osh":         {40.5283, 72.7985},
	"jalal-abad":  {40.9333, 73.0000},
	"karakol":     {42.4907, 78.3936},
	"tokmok":      {42.8419, 75.3015},
	"naryn":       {41.4287, 75.9911},
	"talas":       {42.5228, 72.2427},
	"batken":      {40.0628, 70.8194},
	"kara-balta":  {42.8142, 73.8481},
	"kant":        {42.8910, 74.8510},
	"cholpon-ata": {42.6496, 77.0826},
	"uzgen":       {40.7699, 73.3007},
	"balykchy":    {42.4603, 76.1870},
}

func normalizeCity(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// KnownCity reports whether the city has coordinates.
func KnownCity(name string) bool {
	_, ok := cityCoordinates[normalizeCity(name)]
	return ok
}

// CityDistanceKm is the great-circle distance between two known cities.
func CityDistanceKm(a, b string) float64 {
	na, nb := normalizeCity(a), normalizeCity(b)

	ca, okA := cityCoordinates[na]
	cb, okB := cityCoordinates[nb]
	if !okA || !okB {
		if na == nb {
			return 0
		}
		return unknownCityDistanceKm
	}

	return haversine(ca, cb)
}

func haversine(a, b coordinates) float64 {
	lat1 := a.lat * math.Pi / 180
	lat2 := b.lat * math.Pi / 180
	dLat := (b.lat - a.lat) * math.Pi / 180
	dLng := (b.lng - a.lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// LocationScore maps the distance between two cities onto discrete bands of
// maxScore: 0 km 100%, <=50 km 80%, <=100 km 60%, <=200 km 40%, else 20%.
func LocationScore(a, b string, maxScore int) int {
	return ScoreForDistance(CityDistanceKm(a, b), maxScore)
}

func ScoreForDistance(km float64, maxScore int) int {
	var share float64
	switch {
	case km == 0:
		share = 1.0
	case km <= 50:
		share = 0.8
	case km <= 100:
		share = 0.6
	case km <= 200:
		share = 0.4
	default:
		share = 0.2
	}
	return int(math.Round(float64(maxScore) * share))
}
