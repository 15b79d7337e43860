package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/roboco-io/bmp2yuv/internal/batch"
	"github.com/roboco-io/bmp2yuv/internal/bmp"
	"github.com/roboco-io/bmp2yuv/internal/config"
	"github.com/roboco-io/bmp2yuv/internal/report"
	"github.com/roboco-io/bmp2yuv/internal/source"
	"github.com/roboco-io/bmp2yuv/internal/yuv"
	"github.com/spf13/cobra"
)

var (
	convertOutput  string
	convertLayout  string
	convertWorkers int
	convertExt     string
	convertReport  string
	convertTrace   bool
	convertVerbose bool
	convertQuiet   bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [input]",
	Short: "BMP 파일을 YUV 4:4:4 packed 파일로 변환",
	Long: `BMP 파일을 YUV 4:4:4 8-bit packed 파일로 변환합니다.

입력은 디렉토리, 단일 BMP 파일 또는 OLE2 복합 문서(.cfb 등)일 수 있습니다.
디렉토리는 하위 디렉토리를 탐색하지 않으며, 복합 문서는 확장자가 일치하는
스트림만 변환합니다. 출력 파일은 <출력 디렉토리>/<이름>.yuv 입니다.

한 파일이 실패해도 나머지 파일은 계속 변환되며, 실패한 파일이 있으면
종료 코드는 0이 아닙니다.

픽셀 배치 (--layout):
  standard  픽셀당 3바이트 (표준 BMP, 기본값)
  legacy    픽셀당 4바이트 (이전 버전과 비트 단위로 동일한 출력)

환경 변수:
  BMP2YUV_INPUT=path    입력 경로
  BMP2YUV_OUTPUT=dir    출력 디렉토리
  BMP2YUV_LAYOUT=xxx    픽셀 배치 (standard, legacy)
  BMP2YUV_WORKERS=n     동시 변환 파일 수
  BMP2YUV_TRACE=true    첫 행 픽셀 추적 출력

예시:
  bmp2yuv convert
  bmp2yuv convert ./photos -o ./yuv
  bmp2yuv convert image.bmp --layout legacy --trace
  bmp2yuv convert ./photos --report report.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	addConvertFlags(convertCmd)
	rootCmd.AddCommand(convertCmd)
}

// addConvertFlags binds the convert flags to cmd. The root command shares
// them so that running it without a subcommand converts.
func addConvertFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&convertOutput, "output", "o", "", "출력 디렉토리 (기본: output_yuv)")
	cmd.Flags().StringVar(&convertLayout, "layout", "", "픽셀 배치 (standard, legacy)")
	cmd.Flags().IntVar(&convertWorkers, "workers", 0, "동시 변환 파일 수 (0: CPU 수)")
	cmd.Flags().StringVar(&convertExt, "ext", "", "입력 파일 확장자 (기본: .bmp)")
	cmd.Flags().StringVar(&convertReport, "report", "", "변환 결과 리포트 경로 (.json, .yaml)")
	cmd.Flags().BoolVar(&convertTrace, "trace", false, "각 이미지 첫 행의 픽셀 값 출력")
	cmd.Flags().BoolVarP(&convertVerbose, "verbose", "v", false, "상세 출력")
	cmd.Flags().BoolVarP(&convertQuiet, "quiet", "q", false, "조용한 모드")
}

// loadConvertConfig merges the config file, environment and flags, in
// increasing priority.
func loadConvertConfig(cmd *cobra.Command) (*config.Config, error) {
	loader, err := newLoader()
	if err != nil {
		return nil, fmt.Errorf("설정 로더 초기화 실패: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("설정 로드 실패: %w", err)
	}
	cfg.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Dir = convertOutput
	}
	if flags.Changed("layout") {
		cfg.Convert.Layout = convertLayout
	}
	if flags.Changed("workers") {
		cfg.Convert.Workers = convertWorkers
	}
	if flags.Changed("ext") {
		cfg.Input.Extension = convertExt
	}
	if flags.Changed("report") {
		cfg.Output.Report = convertReport
	}
	if flags.Changed("trace") {
		cfg.Convert.Trace = convertTrace
	}
	return cfg, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConvertConfig(cmd)
	if err != nil {
		return err
	}

	inputPath := cfg.Input.Path
	if len(args) > 0 {
		inputPath = args[0]
	}

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("입력 경로를 찾을 수 없습니다: %s", inputPath)
	}

	layout, err := yuv.ParseLayout(cfg.Convert.Layout)
	if err != nil {
		return fmt.Errorf("잘못된 픽셀 배치: %w", err)
	}

	src, err := source.Open(inputPath, source.Options{Extension: cfg.Input.Extension})
	if err != nil {
		return fmt.Errorf("입력 열기 실패: %w", err)
	}
	defer src.Close()

	items, err := src.List()
	if err != nil {
		return fmt.Errorf("입력 목록 조회 실패: %w", err)
	}

	stderr := cmd.ErrOrStderr()
	verbose := convertVerbose && !convertQuiet

	if verbose {
		fmt.Fprintf(stderr, "입력: %s (%d개 파일)\n", src, len(items))
		fmt.Fprintf(stderr, "출력: %s\n", cfg.Output.Dir)
		fmt.Fprintf(stderr, "픽셀 배치: %s, 동시 작업: %d\n", layout, cfg.EffectiveWorkers())
	}

	if len(items) == 0 {
		if !convertQuiet {
			fmt.Fprintf(stderr, "변환할 파일이 없습니다: %s\n", src)
		}
		return nil
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("출력 디렉토리 생성 실패: %w", err)
	}

	runner := batch.NewRunner(cfg.Convert.Workers, yuv.Options{Layout: layout})
	if cfg.Convert.Trace {
		runner.Trace = newTracer(stderr)
	}
	runner.Observer = func(res batch.Result) {
		printResult(stderr, res, verbose)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	summary := report.New(src.String(), layout.String(), time.Now())
	results := runner.Run(ctx, batch.Plan(items, cfg.Output.Dir))
	summary.Add(results...)
	summary.Finish(time.Now())

	if cfg.Output.Report != "" {
		if err := summary.Write(cfg.Output.Report); err != nil {
			return fmt.Errorf("리포트 저장 실패: %w", err)
		}
		if verbose {
			fmt.Fprintf(stderr, "리포트 저장: %s\n", cfg.Output.Report)
		}
	}

	if !convertQuiet {
		fmt.Fprintf(stderr, "완료: %d개 변환, %d개 실패\n", summary.Converted, summary.Failed)
	}

	if err := batch.Err(results); err != nil {
		return fmt.Errorf("변환 실패: %w", err)
	}
	return nil
}

// printResult reports one finished file. Failures are printed even in
// quiet mode.
func printResult(w io.Writer, res batch.Result, verbose bool) {
	if !res.OK() {
		fmt.Fprintf(w, "실패: %s [%s]: %v\n", res.Job.Item.Name, errorKind(res.Err), res.Err)
		return
	}
	if convertQuiet {
		return
	}
	if verbose && res.Header != nil {
		fmt.Fprintf(w, "변환 완료: %s -> %s (%dx%d, %d bytes, %s)\n",
			res.Job.Item.Name, res.Job.Output, res.Header.Width(), res.Header.Height(),
			res.Bytes, res.Duration.Round(time.Millisecond))
		return
	}
	fmt.Fprintf(w, "변환 완료: %s\n", res.Job.Item.Name)
}

// newTracer prints the first row of every image. Lines from concurrent
// jobs are serialized but may interleave between files.
func newTracer(w io.Writer) func(batch.Job) yuv.TraceFunc {
	var mu sync.Mutex
	return func(job batch.Job) yuv.TraceFunc {
		name := job.Item.Name
		return func(x, offset int, r, g, b uint8) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(w, "%s: x=%d offset=%d rgb=%d %d %d\n", name, x, offset, r, g, b)
		}
	}
}

// errorKind labels err for messages; it mirrors report entries.
func errorKind(err error) string {
	switch bmp.KindOf(err) {
	case "unsupported_format":
		return "지원하지 않는 형식"
	case "truncated_header":
		return "헤더 잘림"
	case "truncated_pixel_data":
		return "픽셀 데이터 잘림"
	case "invalid_geometry":
		return "잘못된 크기"
	case "io_failure":
		return "입출력 오류"
	default:
		return "오류"
	}
}
