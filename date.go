package fatvol

import (
	"time"
)

// ParseDate reads the given input as a FAT directory entry date stamp:
// a 16 bit field relative to the MS-DOS epoch of 01/01/1980.
//  Bits 0-4: day of month, 1-31.
//  Bits 5-8: month of year, 1-12.
//  Bits 9-15: years since 1980, 0-127.
// The returned time always has a time of day of 00:00:00 UTC.
//
// Day or month of 0 is undefined, in that case time.Time{} is returned so
// that time.Time.IsZero() can be used to detect it.
func ParseDate(input uint16) time.Time {
	dayOfMonth := input & 0x1F
	monthOfYear := input & 0x1E0 >> 5
	yearSince1980 := input & 0xFE00 >> 9

	if dayOfMonth == 0 || monthOfYear == 0 {
		return time.Time{}
	}

	return time.Date(1980+int(yearSince1980), time.Month(monthOfYear), int(dayOfMonth), 0, 0, 0, 0, time.UTC)
}

// ParseTime reads the given input as a FAT directory entry time stamp with
// its 2 second granularity:
//  Bits 0-4: seconds divided by 2, 0-29.
//  Bits 5-10: minutes, 0-59.
//  Bits 11-15: hours, 0-23.
// The returned time always has a date of January 1, year 1, so a stamp of
// midnight satisfies time.Time.IsZero().
//
// Out of range values simply overflow into the next unit but are capped at
// 23:59:59 so the date part never changes.
func ParseTime(input uint16) time.Time {
	seconds := int(input&0x1F) * 2
	minutes := input & 0x7E0 >> 5
	hours := input & 0xF800 >> 11

	result := time.Date(1, 1, 1, int(hours), int(minutes), seconds, 0, time.UTC)

	if result.Day() > 1 {
		return time.Date(1, 1, 1, 23, 59, 59, 0, time.UTC)
	}

	return result
}
