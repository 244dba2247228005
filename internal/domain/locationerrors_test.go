package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trips-service/internal/domain"
)

func resolvedData() domain.GeolocationData {
	return domain.GeolocationData{Latitude: 55.755793, Longitude: 37.617134, Country: "Russia", Locality: "Moscow"}
}

func countryOnlyData() domain.GeolocationData {
	return domain.GeolocationData{Latitude: 70.0, Longitude: 90.0, Country: "Russia"}
}

func unresolvedData() domain.GeolocationData {
	return domain.GeolocationData{Latitude: 0, Longitude: 0}
}

func TestLocationErrors_FullyResolved(t *testing.T) {
	trip := domain.Trip{StartDestination: resolvedData(), FinalDestination: resolvedData()}

	assert.Empty(t, domain.LocationErrors(trip))
}

func TestLocationErrors_StartUnresolved(t *testing.T) {
	trip := domain.Trip{StartDestination: unresolvedData(), FinalDestination: resolvedData()}

	errs := domain.LocationErrors(trip)

	require.Len(t, errs, 1)
	assert.Equal(t, "Invalid start location coordinates", errs[0].Cause)
	assert.Equal(t, "Cannot define location by coordinates. Please update start location coordinates", errs[0].Message)
}

func TestLocationErrors_StartCountryOnly(t *testing.T) {
	trip := domain.Trip{StartDestination: countryOnlyData(), FinalDestination: resolvedData()}

	errs := domain.LocationErrors(trip)

	require.Len(t, errs, 1)
	assert.Equal(t, "Invalid start location coordinates", errs[0].Cause)
	assert.Equal(t, "Cannot define locality by coordinates. Please specify start location coordinates more precisely", errs[0].Message)
}

func TestLocationErrors_FinalUnresolved(t *testing.T) {
	trip := domain.Trip{StartDestination: resolvedData(), FinalDestination: unresolvedData()}

	errs := domain.LocationErrors(trip)

	require.Len(t, errs, 1)
	assert.Equal(t, "Invalid final location coordinates", errs[0].Cause)
	assert.Equal(t, "Cannot define location by coordinates. Please update final location coordinates", errs[0].Message)
}

func TestLocationErrors_FinalCountryOnly(t *testing.T) {
	trip := domain.Trip{StartDestination: resolvedData(), FinalDestination: countryOnlyData()}

	errs := domain.LocationErrors(trip)

	require.Len(t, errs, 1)
	assert.Equal(t, "Cannot define locality by coordinates. Please specify final location coordinates more precisely", errs[0].Message)
}

func TestLocationErrors_BothUnresolved_StartFirst(t *testing.T) {
	trip := domain.Trip{StartDestination: unresolvedData(), FinalDestination: unresolvedData()}

	errs := domain.LocationErrors(trip)

	require.Len(t, errs, 2)
	assert.Equal(t, "Invalid start location coordinates", errs[0].Cause)
	assert.Equal(t, "Invalid final location coordinates", errs[1].Cause)
}
