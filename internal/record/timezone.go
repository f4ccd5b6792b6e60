package record

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Timezone resolution policy, in priority order:
//  1. an explicit zone from the model (stated in the document): IANA
//     name or UTC offset
//  2. an explicit UTC offset written in the source text
//  3. an IATA airport code cue
//  4. a city-name cue
//  5. the requester's configured default zone
//  6. UTC
//
// Only (1) and (2) count as explicit; everything below is an inference
// and is reported as a note. The policy never consults the process-local
// zone, which would make results machine-dependent.

type zoneSource string

const (
	zoneExplicit zoneSource = "explicit"
	zoneAirport  zoneSource = "airport"
	zoneCity     zoneSource = "city"
	zoneDefault  zoneSource = "default"
	zoneUTC      zoneSource = "utc"
)

type zoneResolution struct {
	loc    *time.Location
	name   string
	source zoneSource
}

func (z zoneResolution) inferred() bool {
	return z.source != zoneExplicit
}

// airportZones maps IATA codes to IANA zones for the airports that show
// up on tickets. Unlisted codes simply fall through to the next cue.
var airportZones = map[string]string{
	// Europe
	"CDG": "Europe/Paris", "ORY": "Europe/Paris",
	"LHR": "Europe/London", "LGW": "Europe/London", "STN": "Europe/London",
	"FRA": "Europe/Berlin", "MUC": "Europe/Berlin", "BER": "Europe/Berlin",
	"FMM": "Europe/Berlin", "HAM": "Europe/Berlin", "DUS": "Europe/Berlin",
	"AMS": "Europe/Amsterdam", "BRU": "Europe/Brussels",
	"MAD": "Europe/Madrid", "BCN": "Europe/Madrid",
	"FCO": "Europe/Rome", "MXP": "Europe/Rome", "VCE": "Europe/Rome",
	"LIS": "Europe/Lisbon", "OPO": "Europe/Lisbon",
	"VIE": "Europe/Vienna", "ZRH": "Europe/Zurich", "GVA": "Europe/Zurich",
	"CPH": "Europe/Copenhagen", "OSL": "Europe/Oslo", "ARN": "Europe/Stockholm",
	"HEL": "Europe/Helsinki", "WAW": "Europe/Warsaw", "PRG": "Europe/Prague",
	"BUD": "Europe/Budapest", "ATH": "Europe/Athens", "IST": "Europe/Istanbul",
	"DUB": "Europe/Dublin", "KEF": "Atlantic/Reykjavik",
	// Americas
	"JFK": "America/New_York", "EWR": "America/New_York", "LGA": "America/New_York",
	"BOS": "America/New_York", "MIA": "America/New_York", "ATL": "America/New_York",
	"ORD": "America/Chicago", "DFW": "America/Chicago", "IAH": "America/Chicago",
	"DEN": "America/Denver", "PHX": "America/Phoenix",
	"LAX": "America/Los_Angeles", "SFO": "America/Los_Angeles", "SEA": "America/Los_Angeles",
	"YYZ": "America/Toronto", "YVR": "America/Vancouver",
	"MEX": "America/Mexico_City", "GRU": "America/Sao_Paulo", "EZE": "America/Argentina/Buenos_Aires",
	// Middle East / Africa
	"DXB": "Asia/Dubai", "AUH": "Asia/Dubai", "DOH": "Asia/Qatar",
	"TLV": "Asia/Jerusalem", "CAI": "Africa/Cairo", "JNB": "Africa/Johannesburg",
	// Asia / Oceania
	"DEL": "Asia/Kolkata", "BOM": "Asia/Kolkata",
	"SIN": "Asia/Singapore", "KUL": "Asia/Kuala_Lumpur", "BKK": "Asia/Bangkok",
	"HKG": "Asia/Hong_Kong", "PVG": "Asia/Shanghai", "PEK": "Asia/Shanghai",
	"NRT": "Asia/Tokyo", "HND": "Asia/Tokyo", "ICN": "Asia/Seoul",
	"SYD": "Australia/Sydney", "MEL": "Australia/Melbourne", "AKL": "Pacific/Auckland",
}

// cityZones maps lowercase city names to IANA zones.
var cityZones = map[string]string{
	"paris": "Europe/Paris", "london": "Europe/London",
	"berlin": "Europe/Berlin", "munich": "Europe/Berlin", "münchen": "Europe/Berlin",
	"frankfurt": "Europe/Berlin", "hamburg": "Europe/Berlin", "memmingen": "Europe/Berlin",
	"amsterdam": "Europe/Amsterdam", "brussels": "Europe/Brussels",
	"madrid": "Europe/Madrid", "barcelona": "Europe/Madrid",
	"rome": "Europe/Rome", "milan": "Europe/Rome", "venice": "Europe/Rome",
	"lisbon": "Europe/Lisbon", "porto": "Europe/Lisbon",
	"vienna": "Europe/Vienna", "zurich": "Europe/Zurich", "geneva": "Europe/Zurich",
	"copenhagen": "Europe/Copenhagen", "oslo": "Europe/Oslo", "stockholm": "Europe/Stockholm",
	"helsinki": "Europe/Helsinki", "warsaw": "Europe/Warsaw", "prague": "Europe/Prague",
	"budapest": "Europe/Budapest", "athens": "Europe/Athens", "istanbul": "Europe/Istanbul",
	"dublin": "Europe/Dublin",
	"new york": "America/New_York", "boston": "America/New_York", "miami": "America/New_York",
	"chicago": "America/Chicago", "houston": "America/Chicago", "dallas": "America/Chicago",
	"denver": "America/Denver", "los angeles": "America/Los_Angeles",
	"san francisco": "America/Los_Angeles", "seattle": "America/Los_Angeles",
	"toronto": "America/Toronto", "vancouver": "America/Vancouver",
	"mexico city": "America/Mexico_City", "sao paulo": "America/Sao_Paulo",
	"dubai": "Asia/Dubai", "doha": "Asia/Qatar", "tel aviv": "Asia/Jerusalem",
	"cairo": "Africa/Cairo", "johannesburg": "Africa/Johannesburg",
	"delhi": "Asia/Kolkata", "mumbai": "Asia/Kolkata",
	"singapore": "Asia/Singapore", "kuala lumpur": "Asia/Kuala_Lumpur",
	"bangkok": "Asia/Bangkok", "hong kong": "Asia/Hong_Kong",
	"shanghai": "Asia/Shanghai", "beijing": "Asia/Shanghai",
	"tokyo": "Asia/Tokyo", "seoul": "Asia/Seoul",
	"sydney": "Australia/Sydney", "melbourne": "Australia/Melbourne",
	"auckland": "Pacific/Auckland",
}

var (
	// e.g. "UTC+2", "GMT-05", "UTC +02:00"
	reUTCOffset = regexp.MustCompile(`(?i)\b(?:utc|gmt)\s*([+-])\s*(\d{1,2})(?::?(\d{2}))?\b`)
	// standalone IATA codes; validated against the table so ordinary
	// three-letter words don't match.
	reIATA = regexp.MustCompile(`\b([A-Z]{3})\b`)
	// a bare offset like "+02:00" or "-0530"
	reBareOffset = regexp.MustCompile(`^([+-])(\d{2}):?(\d{2})$`)
)

// resolveZone applies the resolution policy. modelZone is the model's
// timezone field (stated in the document); text is location plus source
// text to scan for cues.
func resolveZone(modelZone, text, defaultZone string) zoneResolution {
	if z, ok := explicitZone(modelZone); ok {
		return z
	}
	if off := reUTCOffset.FindStringSubmatch(text); off != nil {
		if z, ok := offsetZone(off[1], off[2], off[3]); ok {
			return z
		}
	}
	for _, code := range reIATA.FindAllString(text, -1) {
		if name, ok := airportZones[code]; ok {
			if loc, err := time.LoadLocation(name); err == nil {
				return zoneResolution{loc: loc, name: name, source: zoneAirport}
			}
		}
	}
	if name, ok := earliestCity(strings.ToLower(text)); ok {
		if loc, err := time.LoadLocation(name); err == nil {
			return zoneResolution{loc: loc, name: name, source: zoneCity}
		}
	}
	if defaultZone != "" {
		if loc, err := time.LoadLocation(defaultZone); err == nil {
			return zoneResolution{loc: loc, name: defaultZone, source: zoneDefault}
		}
	}
	return zoneResolution{loc: time.UTC, name: "UTC", source: zoneUTC}
}

// earliestCity resolves the city mentioned first in the lowercased
// text. Itineraries name the origin before the destination, and the
// result must not depend on map iteration order. Ties at the same
// position prefer the longer (more specific) name, then lexicographic.
func earliestCity(lower string) (string, bool) {
	best := -1
	var bestCity, bestName string
	for city, name := range cityZones {
		i := strings.Index(lower, city)
		if i < 0 {
			continue
		}
		better := best == -1 || i < best ||
			(i == best && (len(city) > len(bestCity) ||
				(len(city) == len(bestCity) && city < bestCity)))
		if better {
			best, bestCity, bestName = i, city, name
		}
	}
	return bestName, best >= 0
}

// explicitZone interprets the model's timezone field: an IANA name or an
// offset like "+02:00" / "UTC+2".
func explicitZone(s string) (zoneResolution, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return zoneResolution{}, false
	}
	if strings.EqualFold(s, "utc") || strings.EqualFold(s, "z") {
		return zoneResolution{loc: time.UTC, name: "UTC", source: zoneExplicit}, true
	}
	if m := reUTCOffset.FindStringSubmatch(s); m != nil {
		return offsetZone(m[1], m[2], m[3])
	}
	if m := reBareOffset.FindStringSubmatch(s); m != nil {
		return offsetZone(m[1], m[2], m[3])
	}
	if loc, err := time.LoadLocation(s); err == nil {
		return zoneResolution{loc: loc, name: s, source: zoneExplicit}, true
	}
	return zoneResolution{}, false
}

func offsetZone(sign, hh, mm string) (zoneResolution, bool) {
	h, err := strconv.Atoi(hh)
	if err != nil || h > 14 {
		return zoneResolution{}, false
	}
	m := 0
	if mm != "" {
		if m, err = strconv.Atoi(mm); err != nil || m > 59 {
			return zoneResolution{}, false
		}
	}
	secs := h*3600 + m*60
	name := fmt.Sprintf("UTC%s%02d:%02d", sign, h, m)
	if sign == "-" {
		secs = -secs
	}
	return zoneResolution{loc: time.FixedZone(name, secs), name: name, source: zoneExplicit}, true
}
