package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/roboco-io/bmp2yuv/internal/config"
	"github.com/roboco-io/bmp2yuv/internal/yuv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "설정 관리",
	Long: `bmp2yuv 설정을 관리합니다.

설정 파일 위치: ~/.bmp2yuv/config.yaml

하위 명령:
  show    현재 설정 표시
  init    기본 설정 파일 생성
  set     설정 값 변경
  path    설정 파일 경로 표시`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "현재 설정 표시",
	Long: `현재 적용된 설정을 표시합니다.

환경 변수가 설정되어 있으면 해당 값이 적용됩니다.
설정 파일이 없으면 기본값이 표시됩니다.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "기본 설정 파일 생성",
	Long: `기본 설정 파일을 ~/.bmp2yuv/config.yaml에 생성합니다.

이미 설정 파일이 있는 경우 오류가 발생합니다.
기존 파일을 덮어쓰려면 --force 플래그를 사용하세요.`,
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "설정 값 변경",
	Long: `설정 값을 변경합니다.

지원하는 키:
  input.path        입력 경로 (디렉토리, 파일, 복합 문서)
  input.extension   입력 파일 확장자
  output.dir        출력 디렉토리
  output.report     리포트 경로 (.json, .yaml, 빈 값이면 생성 안 함)
  convert.layout    픽셀 배치 (standard, legacy)
  convert.workers   동시 변환 파일 수 (0: CPU 수)
  convert.trace     첫 행 픽셀 추적 (true, false)

예시:
  bmp2yuv config set output.dir ./yuv
  bmp2yuv config set convert.layout legacy`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "설정 파일 경로 표시",
	Run: func(cmd *cobra.Command, args []string) {
		loader, err := newLoader()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "오류: %v\n", err)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), loader.ConfigPath())
	},
}

var configForce bool

var configKeys = []string{
	"input.path", "input.extension",
	"output.dir", "output.report",
	"convert.layout", "convert.workers", "convert.trace",
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "기존 설정 파일 덮어쓰기")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	loader, err := newLoader()
	if err != nil {
		return fmt.Errorf("설정 로더 초기화 실패: %w", err)
	}

	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}
	cfg.ApplyEnv()

	out := cmd.OutOrStdout()
	if loader.Exists() {
		fmt.Fprintf(out, "설정 파일: %s\n\n", loader.ConfigPath())
	} else {
		fmt.Fprintf(out, "설정 파일: (기본값 사용)\n\n")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("설정 출력 실패: %w", err)
	}
	fmt.Fprintln(out, string(data))

	fmt.Fprintln(out, "환경 변수:")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	envVars := []struct {
		key  string
		desc string
	}{
		{"BMP2YUV_INPUT", "입력 경로"},
		{"BMP2YUV_OUTPUT", "출력 디렉토리"},
		{"BMP2YUV_LAYOUT", "픽셀 배치"},
		{"BMP2YUV_WORKERS", "동시 변환 파일 수"},
		{"BMP2YUV_TRACE", "첫 행 픽셀 추적"},
	}

	for _, ev := range envVars {
		status := "(미설정)"
		if v := os.Getenv(ev.key); v != "" {
			status = v
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", ev.key, ev.desc, status)
	}
	w.Flush()

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	loader, err := newLoader()
	if err != nil {
		return fmt.Errorf("설정 로더 초기화 실패: %w", err)
	}

	if loader.Exists() && !configForce {
		return fmt.Errorf("설정 파일이 이미 존재합니다: %s\n덮어쓰려면 --force 플래그를 사용하세요", loader.ConfigPath())
	}

	if err := loader.Save(config.DefaultConfig()); err != nil {
		return fmt.Errorf("설정 파일 생성 실패: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "설정 파일 생성됨: %s\n", loader.ConfigPath())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	loader, err := newLoader()
	if err != nil {
		return fmt.Errorf("설정 로더 초기화 실패: %w", err)
	}

	cfg, err := loader.LoadRaw()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	if err := setConfigValue(cfg, key, value); err != nil {
		return err
	}

	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("설정 저장 실패: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "설정 변경됨: %s = %s\n", key, value)
	return nil
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "input.path":
		cfg.Input.Path = value

	case "input.extension":
		if value == "" {
			return fmt.Errorf("확장자는 비어 있을 수 없습니다")
		}
		cfg.Input.Extension = value

	case "output.dir":
		cfg.Output.Dir = value

	case "output.report":
		cfg.Output.Report = value

	case "convert.layout":
		layout, err := yuv.ParseLayout(value)
		if err != nil {
			names := make([]string, 0, len(yuv.Layouts()))
			for _, l := range yuv.Layouts() {
				names = append(names, l.String())
			}
			return fmt.Errorf("유효하지 않은 픽셀 배치: %s (지원: %s)", value, strings.Join(names, ", "))
		}
		cfg.Convert.Layout = layout.String()

	case "convert.workers":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("유효하지 않은 작업 수: %s", value)
		}
		cfg.Convert.Workers = n

	case "convert.trace":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("유효하지 않은 값: %s (true 또는 false)", value)
		}
		cfg.Convert.Trace = b

	default:
		return fmt.Errorf("알 수 없는 설정 키: %s\n지원하는 키: %s", key, strings.Join(configKeys, ", "))
	}
	return nil
}
