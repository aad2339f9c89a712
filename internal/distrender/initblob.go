package distrender

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/light"
	"github.com/thomasrubini/specrender/internal/spatial"
)

func vec3From(x, y, z float32) geom.Vec3 {
	return geom.Vec3{X: float64(x), Y: float64(y), Z: float64(z)}
}

// PhotonMapBlob is the opaque renderer init-data: the two photon-mapping
// KD-trees (global and caustic), persisted so a
// ClientServer run can broadcast identical state to every worker without
// each one re-running the photon-mapping build pass, and so
// --save-init/--load-init can checkpoint a build across process
// restarts.
type PhotonMapBlob struct {
	Global  []light.Photon
	Caustic []light.Photon
}

// WriteInitBlob writes the §6 init-blob layout: a 4-byte little-endian
// length N, then N bytes opaque to the core. The body holds the global
// then the caustic photon set, each a uint32 photon count followed by
// that many records. Each photon record is position (3f), direction
// (3f), normal (3f), distance (f), a uint32 radiance count, then that
// many per-wavelength radiance floats — floats as float32, everything
// little-endian.
func WriteInitBlob(w io.Writer, blob PhotonMapBlob) error {
	var body []byte
	body = appendPhotonSet(body, blob.Global)
	body = appendPhotonSet(body, blob.Caustic)

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("distrender: write init-blob length: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("distrender: write init-blob body: %w", err)
	}
	return nil
}

// ReadInitBlob parses the layout WriteInitBlob produces.
func ReadInitBlob(r io.Reader) (PhotonMapBlob, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return PhotonMapBlob{}, fmt.Errorf("distrender: read init-blob length: %w", err)
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return PhotonMapBlob{}, fmt.Errorf("distrender: read init-blob body: %w", err)
	}

	global, rest, err := readPhotonSet(body)
	if err != nil {
		return PhotonMapBlob{}, err
	}
	caustic, _, err := readPhotonSet(rest)
	if err != nil {
		return PhotonMapBlob{}, err
	}
	return PhotonMapBlob{Global: global, Caustic: caustic}, nil
}

// BuildBlob captures a pair of already-built photon trees into a
// serializable blob.
func BuildBlob(global, caustic *spatial.PhotonTree) PhotonMapBlob {
	return PhotonMapBlob{Global: global.Photons(), Caustic: caustic.Photons()}
}

// Trees rebuilds the two KD-trees from a parsed blob.
func (b PhotonMapBlob) Trees() (global, caustic *spatial.PhotonTree) {
	return spatial.BuildPhotonTree(b.Global), spatial.BuildPhotonTree(b.Caustic)
}

func appendPhotonSet(body []byte, photons []light.Photon) []byte {
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(photons)))
	body = append(body, countBuf[:]...)
	for _, p := range photons {
		body = appendFloat32(body, float32(p.Position.X), float32(p.Position.Y), float32(p.Position.Z))
		body = appendFloat32(body, float32(p.Direction.X), float32(p.Direction.Y), float32(p.Direction.Z))
		body = appendFloat32(body, float32(p.Normal.X), float32(p.Normal.Y), float32(p.Normal.Z))
		body = appendFloat32(body, float32(p.Distance))
		var radCountBuf [4]byte
		binary.LittleEndian.PutUint32(radCountBuf[:], uint32(len(p.Radiances)))
		body = append(body, radCountBuf[:]...)
		for _, r := range p.Radiances {
			body = appendFloat32(body, float32(r))
		}
	}
	return body
}

func appendFloat32(body []byte, vs ...float32) []byte {
	var buf [4]byte
	for _, v := range vs {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		body = append(body, buf[:]...)
	}
	return body
}

func readFloat32(body []byte) (float32, []byte, error) {
	if len(body) < 4 {
		return 0, nil, fmt.Errorf("distrender: truncated init-blob")
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(body[:4])), body[4:], nil
}

func readUint32(body []byte) (uint32, []byte, error) {
	if len(body) < 4 {
		return 0, nil, fmt.Errorf("distrender: truncated init-blob")
	}
	return binary.LittleEndian.Uint32(body[:4]), body[4:], nil
}

func readPhotonSet(body []byte) ([]light.Photon, []byte, error) {
	count, body, err := readUint32(body)
	if err != nil {
		return nil, nil, err
	}
	photons := make([]light.Photon, 0, count)
	for i := uint32(0); i < count; i++ {
		var vals [10]float32
		for j := range vals {
			var v float32
			v, body, err = readFloat32(body)
			if err != nil {
				return nil, nil, err
			}
			vals[j] = v
		}
		radCount, rest, err := readUint32(body)
		if err != nil {
			return nil, nil, err
		}
		body = rest
		radiances := make([]float64, radCount)
		for j := uint32(0); j < radCount; j++ {
			var v float32
			v, body, err = readFloat32(body)
			if err != nil {
				return nil, nil, err
			}
			radiances[j] = float64(v)
		}
		photons = append(photons, light.Photon{
			Position:  vec3From(vals[0], vals[1], vals[2]),
			Direction: vec3From(vals[3], vals[4], vals[5]),
			Normal:    vec3From(vals[6], vals[7], vals[8]),
			Distance:  float64(vals[9]),
			Radiances: radiances,
		})
	}
	return photons, body, nil
}
