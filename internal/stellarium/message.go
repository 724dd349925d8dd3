package stellarium

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// gotoMessageType is the only message type the protocol defines: a
// client->server telescope goto request.
const gotoMessageType = 0

// positionMessageLen is the total length, including the length field
// itself, of an outbound position report: 2(length)+2(type)+8(time)+
// 4(ra)+4(dec)+4(status).
const positionMessageLen = 24

// GotoMessage is a decoded inbound goto request.
type GotoMessage struct {
	TimestampUs uint64
	RARaw       uint32
	DecRaw      int32
}

// Coordinate converts a GotoMessage's raw wire fields into an hour-angle
// frame's worth of right ascension (radians, 0 at 0h, wrapping at 2*pi)
// and declination (radians).
func (m GotoMessage) Coordinate() (raRad, decRad float64) {
	raRad = DecodeRA(m.RARaw) / 86400 * 2 * math.Pi
	return raRad, DecodeDec(m.DecRaw)
}

// ReadGotoMessage reads and decodes one inbound goto message from r. Any
// message type other than 0 is a protocol error.
func ReadGotoMessage(r io.Reader) (GotoMessage, error) {
	var header struct {
		Length int16
		Type   int16
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return GotoMessage{}, err
	}
	if header.Type != gotoMessageType {
		return GotoMessage{}, fmt.Errorf("stellarium: unsupported message type %d", header.Type)
	}
	if header.Length < 4 {
		return GotoMessage{}, fmt.Errorf("stellarium: message length %d shorter than header", header.Length)
	}

	body := make([]byte, header.Length-4)
	if _, err := io.ReadFull(r, body); err != nil {
		return GotoMessage{}, err
	}
	if len(body) < 16 {
		return GotoMessage{}, fmt.Errorf("stellarium: goto message body too short (%d bytes)", len(body))
	}

	var payload struct {
		Timestamp uint64
		RA        uint32
		Dec       int32
	}
	if err := binary.Read(bytes.NewReader(body), binary.LittleEndian, &payload); err != nil {
		return GotoMessage{}, err
	}
	return GotoMessage{TimestampUs: payload.Timestamp, RARaw: payload.RA, DecRaw: payload.Dec}, nil
}

// WriteGotoMessage encodes and writes an inbound-shaped goto message.
// Exercised by this package's own tests to round-trip ReadGotoMessage; a
// real Stellarium client is the only other writer of this message shape.
func WriteGotoMessage(w io.Writer, timestampUs uint64, raRaw uint32, decRaw int32) error {
	msg := struct {
		Length    int16
		Type      int16
		Timestamp uint64
		RA        uint32
		Dec       int32
	}{Length: 20, Type: gotoMessageType, Timestamp: timestampUs, RA: raRaw, Dec: decRaw}
	return binary.Write(w, binary.LittleEndian, msg)
}

// PositionMessage is an outbound position report.
type PositionMessage struct {
	TimestampUs uint64
	RARaw       uint32
	DecRaw      int32
	Status      int32
}

// WritePositionMessage encodes and writes an outbound position report.
func WritePositionMessage(w io.Writer, msg PositionMessage) error {
	wire := struct {
		Length    int16
		Type      int16
		Timestamp uint64
		RA        uint32
		Dec       int32
		Status    int32
	}{
		Length:    positionMessageLen,
		Type:      gotoMessageType,
		Timestamp: msg.TimestampUs,
		RA:        msg.RARaw,
		Dec:       msg.DecRaw,
		Status:    msg.Status,
	}
	return binary.Write(w, binary.LittleEndian, wire)
}
