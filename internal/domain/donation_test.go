package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionRoundTrip(t *testing.T) {
	x, y, z := 1.5, -2.25, 0.0
	var d Donation
	d.SetPosition(&Position{X: &x, Y: &y, Z: &z})

	p := d.Position()
	require.NotNil(t, p)
	// Coordinates come back bit-for-bit
	assert.Equal(t, 1.5, *p.X)
	assert.Equal(t, -2.25, *p.Y)
	assert.Equal(t, 0.0, *p.Z)
}

func TestPositionAbsent(t *testing.T) {
	var d Donation
	assert.Nil(t, d.Position())

	d.SetPosition(nil)
	assert.Nil(t, d.Position())
}

func TestPositionPartialCoordinates(t *testing.T) {
	// A single coordinate is enough for the donation to count as positioned
	y := 4.0
	var d Donation
	d.SetPosition(&Position{Y: &y})

	p := d.Position()
	require.NotNil(t, p)
	assert.Nil(t, p.X)
	assert.Equal(t, 4.0, *p.Y)
	assert.Nil(t, p.Z)
}
