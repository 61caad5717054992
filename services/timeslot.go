package services

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSlotRange -> range slot tidak valid: now sebelum earliest
// atau jarak lebih dari 24 jam. Gap lebih dari sehari berarti driver
// periodik sempat mati dan harus ditangani, bukan dilewati diam-diam.
var ErrInvalidSlotRange = errors.New("invalid reminder slot range")

// TimeSlot -> pasangan jam lokal ("08:00") dan nama zona. Dipakai
// sebagai join key terhadap UserReminderConfig.
type TimeSlot struct {
	LocalTime string
	Zone      string
}

// reminderZones -> zona yang bisa dipilih user untuk daily reminder.
// Offset zona selalu kelipatan 15 menit, jadi instant UTC kelipatan
// seperempat jam selalu jatuh di satu wall-clock lokal per zona.
// Zona dengan offset :30/:45 tetap ada di daftar; jam lokalnya tidak
// pernah jatuh tepat di menit 00 untuk instant ber-jam bulat dan
// otomatis tersaring.
var reminderZones = []string{
	"UTC",
	"Pacific/Honolulu",
	"America/Anchorage",
	"America/Los_Angeles",
	"America/Denver",
	"America/Chicago",
	"America/New_York",
	"America/Halifax",
	"America/Sao_Paulo",
	"Atlantic/Azores",
	"Europe/London",
	"Europe/Berlin",
	"Europe/Helsinki",
	"Europe/Moscow",
	"Asia/Dubai",
	"Asia/Karachi",
	"Asia/Kolkata",
	"Asia/Kathmandu",
	"Asia/Dhaka",
	"Asia/Bangkok",
	"Asia/Shanghai",
	"Asia/Tokyo",
	"Australia/Adelaide",
	"Australia/Sydney",
	"Pacific/Auckland",
	"Pacific/Chatham",
}

type TimeSlotCalculator struct {
	locations map[string]*time.Location
}

// NewTimeSlotCalculator memuat seluruh zona. Zones nil memakai daftar
// default reminderZones.
func NewTimeSlotCalculator(zones []string) (*TimeSlotCalculator, error) {
	if zones == nil {
		zones = reminderZones
	}

	locations := make(map[string]*time.Location, len(zones))
	for _, name := range zones {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("load time zone %s: %w", name, err)
		}
		locations[name] = loc
	}

	return &TimeSlotCalculator{locations: locations}, nil
}

// SlotsSince menghasilkan semua slot (jam lokal, zona) untuk setiap
// instant seperempat jam di antara earliest (eksklusif) dan now
// (inklusif). Jam lokal yang tidak tepat di menit 00 dibuang karena
// reminder hanya bisa dikonfigurasi per jam bulat.
func (c *TimeSlotCalculator) SlotsSince(earliest, now time.Time) ([]TimeSlot, error) {
	quarters, err := quartersBetween(earliest, now)
	if err != nil {
		return nil, err
	}

	var slots []TimeSlot
	for _, q := range quarters {
		for name, loc := range c.locations {
			local := q.In(loc)
			if local.Minute() != 0 || local.Second() != 0 {
				continue
			}
			slots = append(slots, TimeSlot{
				LocalTime: local.Format("15:04"),
				Zone:      name,
			})
		}
	}
	return slots, nil
}

// quartersBetween menghitung instant seperempat jam setelah earliest
// sampai dengan now. earliest sendiri tidak pernah ikut; slot pertama
// adalah batas seperempat jam berikutnya.
func quartersBetween(earliest, now time.Time) ([]time.Time, error) {
	if now.Before(earliest) || now.Sub(earliest) > 24*time.Hour {
		return nil, fmt.Errorf("%w: earliest=%s now=%s",
			ErrInvalidSlotRange, earliest.Format(time.RFC3339), now.Format(time.RFC3339))
	}

	var quarters []time.Time
	for q := nextQuarterHour(earliest); !q.After(now); q = q.Add(15 * time.Minute) {
		quarters = append(quarters, q)
	}
	return quarters, nil
}

func nextQuarterHour(t time.Time) time.Time {
	return t.Truncate(15 * time.Minute).Add(15 * time.Minute)
}
