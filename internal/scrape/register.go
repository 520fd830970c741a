package scrape

// Pull in every site package so its init() lands in the adapter registry.
// Adding a site means adding one package here plus one config entry.
import (
	_ "jobscout-engine/internal/scrape/emailalerts"
	_ "jobscout-engine/internal/scrape/indeed"
	_ "jobscout-engine/internal/scrape/linkedin"
	_ "jobscout-engine/internal/scrape/remoteok"
	_ "jobscout-engine/internal/scrape/ziprecruiter"
)
