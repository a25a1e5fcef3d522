// Package core holds the domain types shared by every part of the vehicle
// simulator: coordinates and routes, vehicle status, anomaly kinds and the
// reporting port the state machine publishes through.
package core
