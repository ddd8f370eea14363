// Package coverage plans a closed sweep over a wall seen in an image.
//
// The wall is given as an occupancy Mask. Classify samples it on a
// regular grid, SelectWaypoints keeps the usable samples, Solve orders
// them into a closed tour and Stitch joins consecutive waypoints with
// pixel paths that stay on the wall where they can. Plan runs all four
// steps. Everything here is a pure function of its inputs.
package coverage
