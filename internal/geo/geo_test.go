package geo

import (
	"math"
	"testing"

	"github.com/example/saathigo/internal/models"
)

func TestDistanceKmZero(t *testing.T) {
	p := models.Coord{Lat: 28.6315, Lon: 77.2167}
	if d := DistanceKm(p, p); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	a := models.Coord{Lat: 28.6315, Lon: 77.2167}
	b := models.Coord{Lat: 28.6129, Lon: 77.2295}
	if DistanceKm(a, b) != DistanceKm(b, a) {
		t.Fatalf("distance not symmetric: %f vs %f", DistanceKm(a, b), DistanceKm(b, a))
	}
}

func TestDistanceKmKnownPoints(t *testing.T) {
	// Connaught Place to India Gate, roughly 2.4 km.
	a := models.Coord{Lat: 28.6315, Lon: 77.2167}
	b := models.Coord{Lat: 28.6129, Lon: 77.2295}
	d := DistanceKm(a, b)
	if d < 2.0 || d > 2.8 {
		t.Fatalf("expected ~2.4 km, got %f", d)
	}
}

func TestDistanceKmNearbyPoints(t *testing.T) {
	a := models.Coord{Lat: 28.6315, Lon: 77.2167}
	b := models.Coord{Lat: 28.6320, Lon: 77.2170}
	d := DistanceKm(a, b)
	if math.Abs(d-0.06) > 0.03 {
		t.Fatalf("expected ~0.06 km, got %f", d)
	}
}
