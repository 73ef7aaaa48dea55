package service_mocks

//go:generate mockgen -source=../gateways.go -destination=gateway_mocks.go -package=service_mocks

// This file contains the go:generate directive to generate mocks for the
// external gateway interfaces. To regenerate the mocks, run:
//   go generate ./internal/services/service_mocks
