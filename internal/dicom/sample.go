package dicom

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/big"
	randv2 "math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	mrImageStorage    = "1.2.840.10008.5.1.4.1.1.4"
	explicitVRLittle  = "1.2.840.10008.1.2.1"
	defaultSampleSize = 64
)

// SampleSeries describes one series written by GenerateSample.
type SampleSeries struct {
	UID         string   // generated when empty
	Description string   // SeriesDescription is omitted when empty
	SeriesDate  string   // omitted when empty
	StudyDate   string   // omitted when empty
	Folder      string   // directory relative to the output dir
	Images      int      // number of files, ignored when Files is set
	Files       []string // explicit file names inside Folder

	OmitSeriesUID bool // write files without SeriesInstanceUID
	OmitPixelData bool // write header-only files
}

// SampleOptions controls GenerateSample.
type SampleOptions struct {
	OutputDir string
	Series    []SampleSeries
	Size      int // image width and height in pixels (default 64)
	Seed      int64
	Workers   int // 0 = CPU cores

	ProgressCallback func(current, total int)
}

// SampleFile describes a file written by GenerateSample.
type SampleFile struct {
	Path           string
	SeriesUID      string
	InstanceNumber int
}

// sampleTask contains everything needed to write one file.
type sampleTask struct {
	index       int
	path        string
	size        int
	pixelSeed   uint64
	textOverlay string
	metadata    []*dicom.Element
	withPixels  bool
}

// GenerateSample writes small synthetic DICOM series under opts.OutputDir. UIDs are derived
// from opts.Seed so the same options produce the same tree.
func GenerateSample(opts SampleOptions) ([]SampleFile, error) {
	if len(opts.Series) == 0 {
		return nil, fmt.Errorf("no series to generate")
	}
	size := opts.Size
	if size <= 0 {
		size = defaultSampleSize
	}

	rng := randv2.New(randv2.NewPCG(uint64(opts.Seed), uint64(opts.Seed)))
	var chachaSeed [32]byte
	binary.LittleEndian.PutUint64(chachaSeed[:], uint64(opts.Seed))
	uidSource := randv2.NewChaCha8(chachaSeed)
	newUID := func() (string, error) {
		id, err := uuid.NewRandomFromReader(uidSource)
		if err != nil {
			return "", err
		}
		return uidFromUUID(id), nil
	}

	patientName, patientSex := samplePatient(rng)
	patientID := fmt.Sprintf("PID%06d", rng.IntN(1000000))

	studyUID, err := newUID()
	if err != nil {
		return nil, fmt.Errorf("generate study UID: %w", err)
	}

	var tasks []sampleTask
	var files []SampleFile
	for seriesIdx, s := range opts.Series {
		seriesUID := s.UID
		if seriesUID == "" && !s.OmitSeriesUID {
			if seriesUID, err = newUID(); err != nil {
				return nil, fmt.Errorf("generate series UID: %w", err)
			}
		}

		names := s.Files
		if len(names) == 0 {
			for i := 1; i <= s.Images; i++ {
				names = append(names, fmt.Sprintf("IM%06d.dcm", i))
			}
		}

		dir := filepath.Join(opts.OutputDir, s.Folder)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create series directory: %w", err)
		}

		for i, name := range names {
			instance := i + 1
			sopInstanceUID, err := newUID()
			if err != nil {
				return nil, fmt.Errorf("generate SOP instance UID: %w", err)
			}

			metadata := []*dicom.Element{
				mustNewElement(tag.MediaStorageSOPClassUID, []string{mrImageStorage}),
				mustNewElement(tag.MediaStorageSOPInstanceUID, []string{sopInstanceUID}),
				mustNewElement(tag.TransferSyntaxUID, []string{explicitVRLittle}),
				mustNewElement(tag.SOPClassUID, []string{mrImageStorage}),
				mustNewElement(tag.SOPInstanceUID, []string{sopInstanceUID}),
			}
			if s.StudyDate != "" {
				metadata = append(metadata, mustNewElement(tag.StudyDate, []string{s.StudyDate}))
			}
			if s.SeriesDate != "" {
				metadata = append(metadata, mustNewElement(tag.SeriesDate, []string{s.SeriesDate}))
			}
			metadata = append(metadata, mustNewElement(tag.Modality, []string{"MR"}))
			if s.Description != "" {
				metadata = append(metadata, mustNewElement(tag.SeriesDescription, []string{s.Description}))
			}
			metadata = append(metadata,
				mustNewElement(tag.PatientName, []string{patientName}),
				mustNewElement(tag.PatientID, []string{patientID}),
				mustNewElement(tag.PatientSex, []string{patientSex}),
				mustNewElement(tag.StudyInstanceUID, []string{studyUID}),
			)
			if !s.OmitSeriesUID {
				metadata = append(metadata, mustNewElement(tag.SeriesInstanceUID, []string{seriesUID}))
			}
			metadata = append(metadata,
				mustNewElement(tag.SeriesNumber, []string{fmt.Sprintf("%d", seriesIdx+1)}),
				mustNewElement(tag.InstanceNumber, []string{fmt.Sprintf("%d", instance)}),
			)
			if !s.OmitPixelData {
				metadata = append(metadata,
					mustNewElement(tag.SamplesPerPixel, []int{1}),
					mustNewElement(tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
					mustNewElement(tag.Rows, []int{size}),
					mustNewElement(tag.Columns, []int{size}),
					mustNewElement(tag.BitsAllocated, []int{16}),
					mustNewElement(tag.BitsStored, []int{12}),
					mustNewElement(tag.HighBit, []int{11}),
					mustNewElement(tag.PixelRepresentation, []int{0}),
				)
			}

			path := filepath.Join(dir, name)
			tasks = append(tasks, sampleTask{
				index:       len(tasks),
				path:        path,
				size:        size,
				pixelSeed:   rng.Uint64(),
				textOverlay: fmt.Sprintf("%d/%d", instance, len(names)),
				metadata:    metadata,
				withPixels:  !s.OmitPixelData,
			})
			files = append(files, SampleFile{Path: path, SeriesUID: seriesUID, InstanceNumber: instance})
		}
	}

	if err := runSampleTasks(tasks, opts.Workers, opts.ProgressCallback); err != nil {
		return nil, err
	}
	return files, nil
}

// runSampleTasks writes tasks with a pool of workers and returns the first failure.
func runSampleTasks(tasks []sampleTask, workers int, progress func(current, total int)) error {
	if len(tasks) == 0 {
		return nil
	}
	numWorkers := workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(tasks) {
		numWorkers = len(tasks)
	}

	taskChan := make(chan sampleTask, len(tasks))
	resultChan := make(chan struct {
		index int
		err   error
	}, len(tasks))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskChan {
				resultChan <- struct {
					index int
					err   error
				}{task.index, writeSampleFile(task)}
			}
		}()
	}

	for _, task := range tasks {
		taskChan <- task
	}
	close(taskChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	completed := 0
	var firstErr error
	for result := range resultChan {
		if result.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("write sample file %d: %w", result.index, result.err)
		}
		completed++
		if progress != nil {
			progress(completed, len(tasks))
		}
	}
	return firstErr
}

func writeSampleFile(task sampleTask) error {
	elements := task.metadata
	if task.withPixels {
		nativeFrame := syntheticFrame(task.size, task.pixelSeed)
		drawTextOnFrame16(nativeFrame, task.size, task.size, task.textOverlay)
		pixelData := dicom.PixelDataInfo{
			Frames: []*frame.Frame{
				{
					Encapsulated: false,
					NativeData:   nativeFrame,
				},
			},
		}
		elements = append(append([]*dicom.Element{}, task.metadata...), mustNewElement(tag.PixelData, pixelData))
	}
	return writeDatasetToFile(task.path, dicom.Dataset{Elements: elements})
}

// syntheticFrame fills a 12-bit frame with a radial gradient plus noise.
func syntheticFrame(size int, seed uint64) *frame.NativeFrame[uint16] {
	rng := randv2.New(randv2.NewPCG(seed, seed))
	nativeFrame := frame.NewNativeFrame[uint16](16, size, size, size*size, 1)

	center := float64(size) / 2
	maxDist := math.Sqrt(2 * center * center)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-center, float64(y)-center
			intensity := (1.0-math.Sqrt(dx*dx+dy*dy)/maxDist)*3000 + (rng.Float64()-0.5)*600
			nativeFrame.RawData[y*size+x] = uint16(math.Max(0, math.Min(4095, intensity)))
		}
	}
	return nativeFrame
}

// drawTextOnFrame16 stamps text, scaled to about a third of the width, in the middle of a
// 12-bit frame.
func drawTextOnFrame16(nativeFrame *frame.NativeFrame[uint16], width, height int, text string) {
	face := basicfont.Face7x13
	baseWidth := font.MeasureString(face, text).Ceil()
	baseHeight := 13
	if baseWidth == 0 {
		return
	}

	textImg := image.NewAlpha(image.Rect(0, 0, baseWidth, baseHeight))
	drawer := &font.Drawer{
		Dst:  textImg,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.Point26_6{Y: fixed.I(11)},
	}
	drawer.DrawString(text)

	scale := math.Max(1, float64(width)/3/float64(baseWidth))
	scaledW := int(float64(baseWidth) * scale)
	scaledH := int(float64(baseHeight) * scale)
	scaled := image.NewAlpha(image.Rect(0, 0, scaledW, scaledH))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), textImg, textImg.Bounds(), draw.Src, nil)

	offX := (width - scaledW) / 2
	offY := (height - scaledH) / 2
	for sy := 0; sy < scaledH; sy++ {
		for sx := 0; sx < scaledW; sx++ {
			if scaled.AlphaAt(sx, sy) == (color.Alpha{}) {
				continue
			}
			x, y := offX+sx, offY+sy
			if x >= 0 && x < width && y >= 0 && y < height {
				nativeFrame.RawData[y*width+x] = 4095
			}
		}
	}
}

// uidFromUUID formats id as a UUID-derived DICOM UID (2.25.<decimal>).
func uidFromUUID(id uuid.UUID) string {
	return "2.25." + new(big.Int).SetBytes(id[:]).String()
}

// mustNewElement creates a DICOM element and panics on error. Only used with static values.
func mustNewElement(t tag.Tag, value any) *dicom.Element {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}

// writeDatasetToFile writes a DICOM dataset to a file.
func writeDatasetToFile(filename string, ds dicom.Dataset, opts ...dicom.WriteOption) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return dicom.Write(f, ds, opts...)
}
