package weapon

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Save format:
//
//	magic   [4]byte "MHKS"
//	version uint16
//	flags   uint16  bit 0 = in reload
//	float64 x5      last, next, soonest, penalty, reload done
//	int32   x5      shots, burst, clip, reserve, primary attacks
//
// All fields are big-endian.
const (
	SaveVersion uint16 = 1
	saveSizeV1         = 4 + 2 + 2 + 5*8 + 5*4
)

var saveMagic = [4]byte{'M', 'H', 'K', 'S'}

var (
	ErrBadMagic    = errors.New("weapon: not a fire state record")
	ErrBadVersion  = errors.New("weapon: unsupported fire state version")
	ErrShortBuffer = errors.New("weapon: fire state record truncated")
	ErrBadValue    = errors.New("weapon: fire state holds a non-finite value")
)

const flagInReload = 1 << 0

// MarshalBinary encodes the state in the current save format.
func (s FireState) MarshalBinary() ([]byte, error) {
	buf := make([]byte, saveSizeV1)
	copy(buf[0:4], saveMagic[:])
	binary.BigEndian.PutUint16(buf[4:6], SaveVersion)

	var flags uint16
	if s.InReload {
		flags |= flagInReload
	}
	binary.BigEndian.PutUint16(buf[6:8], flags)

	off := 8
	for _, f := range []float64{s.LastAttackTime, s.NextAttackTime, s.SoonestAttackTime, s.AccuracyPenalty, s.ReloadDoneTime} {
		binary.BigEndian.PutUint64(buf[off:off+8], math.Float64bits(f))
		off += 8
	}
	for _, i := range []int{s.ShotsFired, s.BurstRemaining, s.Clip, s.Reserve, s.PrimaryAttacks} {
		binary.BigEndian.PutUint32(buf[off:off+4], uint32(int32(i)))
		off += 4
	}
	return buf, nil
}

// UnmarshalBinary decodes a record written by MarshalBinary.
func (s *FireState) UnmarshalBinary(data []byte) error {
	if len(data) < 6 {
		return ErrShortBuffer
	}
	if [4]byte(data[0:4]) != saveMagic {
		return ErrBadMagic
	}
	version := binary.BigEndian.Uint16(data[4:6])
	if version != SaveVersion {
		return fmt.Errorf("%w: %d", ErrBadVersion, version)
	}
	if len(data) < saveSizeV1 {
		return ErrShortBuffer
	}

	flags := binary.BigEndian.Uint16(data[6:8])
	off := 8
	var floats [5]float64
	for i := range floats {
		floats[i] = math.Float64frombits(binary.BigEndian.Uint64(data[off : off+8]))
		if math.IsNaN(floats[i]) || math.IsInf(floats[i], 0) {
			return ErrBadValue
		}
		off += 8
	}
	var ints [5]int
	for i := range ints {
		ints[i] = int(int32(binary.BigEndian.Uint32(data[off : off+4])))
		off += 4
	}

	*s = FireState{
		LastAttackTime:    floats[0],
		NextAttackTime:    floats[1],
		SoonestAttackTime: floats[2],
		AccuracyPenalty:   floats[3],
		ReloadDoneTime:    floats[4],
		ShotsFired:        ints[0],
		BurstRemaining:    ints[1],
		Clip:              ints[2],
		Reserve:           ints[3],
		PrimaryAttacks:    ints[4],
		InReload:          flags&flagInReload != 0,
	}
	return nil
}
