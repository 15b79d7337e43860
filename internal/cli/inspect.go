package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/roboco-io/bmp2yuv/internal/bmp"
	"github.com/roboco-io/bmp2yuv/internal/source"
	"github.com/roboco-io/bmp2yuv/internal/yuv"
	"github.com/spf13/cobra"
)

var (
	inspectFormat      string
	inspectExt         string
	inspectPrettyPrint bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <input>",
	Short: "BMP 헤더 정보와 변환 가능 여부 확인",
	Long: `BMP 파일의 헤더를 읽어 크기, 픽셀 형식, 행 크기 및 예상 출력 크기를
표시합니다. 픽셀 데이터는 변환하지 않습니다.

입력이 디렉토리나 복합 문서이면 확장자가 일치하는 모든 항목을 검사합니다.
출력 형식은 JSON 또는 텍스트(요약)를 지원합니다.

예시:
  bmp2yuv inspect image.bmp
  bmp2yuv inspect ./photos --format text
  bmp2yuv inspect archive.cfb --ext .dib`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "json", "출력 형식 (json, text)")
	inspectCmd.Flags().StringVar(&inspectExt, "ext", source.DefaultExtension, "입력 파일 확장자")
	inspectCmd.Flags().BoolVar(&inspectPrettyPrint, "pretty", true, "JSON 들여쓰기 적용")

	rootCmd.AddCommand(inspectCmd)
}

// inspection describes one bitmap without converting it.
type inspection struct {
	Name          string         `json:"name"`
	Signature     string         `json:"signature,omitempty"`
	FileSize      uint32         `json:"file_size,omitempty"`
	PixelOffset   uint32         `json:"pixel_offset,omitempty"`
	InfoSize      uint32         `json:"info_size,omitempty"`
	Width         int32          `json:"width,omitempty"`
	Height        int32          `json:"height,omitempty"`
	BitsPerPixel  uint16         `json:"bits_per_pixel,omitempty"`
	Compression   string         `json:"compression,omitempty"`
	RowStride     int            `json:"row_stride,omitempty"`
	PixelDataSize int            `json:"pixel_data_size,omitempty"`
	OutputSize    int            `json:"output_size,omitempty"`
	Layouts       map[string]int `json:"layout_footprint,omitempty"`
	Valid         bool           `json:"valid"`
	Error         string         `json:"error,omitempty"`
	ErrorKind     string         `json:"error_kind,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("파일을 찾을 수 없습니다: %s", inputPath)
	}

	src, err := source.Open(inputPath, source.Options{Extension: inspectExt})
	if err != nil {
		return fmt.Errorf("입력 열기 실패: %w", err)
	}
	defer src.Close()

	items, err := src.List()
	if err != nil {
		return fmt.Errorf("입력 목록 조회 실패: %w", err)
	}

	results := make([]inspection, 0, len(items))
	for _, item := range items {
		results = append(results, inspectItem(item))
	}

	output, err := formatInspections(results, inspectFormat)
	if err != nil {
		return fmt.Errorf("출력 포맷팅 실패: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func inspectItem(item source.Item) inspection {
	res := inspection{Name: item.Name}

	r, err := item.Open()
	if err != nil {
		return res.fail(fmt.Errorf("%w: %v", bmp.ErrIO, err))
	}
	defer r.Close()

	h, err := bmp.ReadHeader(r)
	if err != nil {
		return res.fail(err)
	}

	res.Signature = string(h.File.Signature[:])
	res.FileSize = h.File.FileSize
	res.PixelOffset = h.File.PixelDataOffset
	res.InfoSize = h.Info.HeaderSize
	res.Width = h.Info.Width
	res.Height = h.Info.Height
	res.BitsPerPixel = h.Info.BitsPerPixel
	res.Compression = bmp.CompressionName(h.Info.Compression)

	if err := h.Validate(); err != nil {
		return res.fail(err)
	}

	res.RowStride = h.RowStride()
	res.PixelDataSize = h.PixelDataSize()
	res.OutputSize = h.OutputSize()
	res.Layouts = make(map[string]int)
	for _, l := range yuv.Layouts() {
		res.Layouts[l.String()] = l.RowFootprint(h.Width())
	}
	res.Valid = true
	return res
}

func (r inspection) fail(err error) inspection {
	r.Valid = false
	r.Error = err.Error()
	r.ErrorKind = bmp.KindOf(err)
	return r
}

func formatInspections(results []inspection, format string) (string, error) {
	switch format {
	case "json":
		var data []byte
		var err error
		if inspectPrettyPrint {
			data, err = json.MarshalIndent(results, "", "  ")
		} else {
			data, err = json.Marshal(results)
		}
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "text":
		var sb strings.Builder
		for i, r := range results {
			if i > 0 {
				sb.WriteString("\n")
			}
			writeInspectionText(&sb, r)
		}
		return strings.TrimRight(sb.String(), "\n"), nil

	default:
		return "", fmt.Errorf("지원하지 않는 출력 형식: %s", format)
	}
}

func writeInspectionText(w io.Writer, r inspection) {
	fmt.Fprintf(w, "파일: %s\n", r.Name)
	if r.Signature != "" {
		fmt.Fprintf(w, "  크기: %dx%d, %d bpp, %s\n", r.Width, r.Height, r.BitsPerPixel, r.Compression)
		fmt.Fprintf(w, "  픽셀 데이터 위치: %d, 정보 헤더: %d bytes\n", r.PixelOffset, r.InfoSize)
	}
	if !r.Valid {
		fmt.Fprintf(w, "  변환 불가 (%s): %s\n", r.ErrorKind, r.Error)
		return
	}
	fmt.Fprintf(w, "  행 크기: %d bytes, 픽셀 데이터: %d bytes\n", r.RowStride, r.PixelDataSize)
	fmt.Fprintf(w, "  출력 크기: %d bytes\n", r.OutputSize)
	for _, l := range yuv.Layouts() {
		fmt.Fprintf(w, "  %s 행 읽기 범위: %d bytes\n", l, r.Layouts[l.String()])
	}
}
