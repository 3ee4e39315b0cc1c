package Filters

//go:generate go run ../cmd/firgen -type highpass -taps 81 -rate 32000 -cutoff 3000 -o highpass_coeffs.go
