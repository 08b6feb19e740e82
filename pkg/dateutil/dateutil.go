package dateutil

import (
	"time"
)

// Age calculates the attained age at a given date.
func Age(birthDate, atDate time.Time) int {
	age := atDate.Year() - birthDate.Year()
	if atDate.Month() < birthDate.Month() ||
		(atDate.Month() == birthDate.Month() && atDate.Day() < birthDate.Day()) {
		age--
	}
	return age
}

// AgeInYear returns the age attained at any point during the given calendar
// year, i.e. the age on December 31. Annual projections key off this value
// so a person who turns eligible mid-year counts as eligible for the year.
func AgeInYear(birthDate time.Time, year int) int {
	return year - birthDate.Year()
}

// FullRetirementAge returns the Social Security Full Retirement Age for a
// birth year, rounded down to whole years (the 2-month increments between
// 1955 and 1959 round to 66).
func FullRetirementAge(birthYear int) int {
	switch {
	case birthYear <= 1942:
		return 65
	case birthYear <= 1959:
		return 66
	default: // 1960 and later
		return 67
	}
}

// EndOfYear returns the last instant of the year for a given date.
func EndOfYear(date time.Time) time.Time {
	return time.Date(date.Year(), 12, 31, 23, 59, 59, 999999999, date.Location())
}

// BeginningOfYear returns the first day of the year for a given date.
func BeginningOfYear(date time.Time) time.Time {
	return time.Date(date.Year(), 1, 1, 0, 0, 0, 0, date.Location())
}
