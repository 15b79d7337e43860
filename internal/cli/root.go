// Package cli implements the bmp2yuv command line.
package cli

import (
	"context"
	"fmt"

	"github.com/roboco-io/bmp2yuv/internal/config"
	"github.com/spf13/cobra"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "bmp2yuv [input]",
	Short: "24비트 BMP 이미지를 YUV 4:4:4 packed 데이터로 변환",
	Long: `24비트 비압축 BMP 이미지를 읽어 BT.601 행렬로 YUV 색공간으로 변환하고
각 입력 파일마다 raw YUV 4:4:4 8-bit packed 파일을 생성합니다.

입력을 지정하지 않으면 설정 파일의 input.path(기본: input_images)를 변환합니다.
인자 없이 실행하는 것은 'bmp2yuv convert'와 같습니다.

예시:
  bmp2yuv
  bmp2yuv ./photos -o ./yuv
  bmp2yuv convert image.bmp --layout legacy
  bmp2yuv inspect image.bmp`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runConvert,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "버전 정보 표시",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bmp2yuv %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "설정 파일 경로 (기본: ~/.bmp2yuv/config.yaml)")
	addConvertFlags(rootCmd)

	rootCmd.AddCommand(versionCmd)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// newLoader returns the loader for --config, or the default location.
func newLoader() (*config.Loader, error) {
	if configPath != "" {
		return config.NewLoaderWithPath(configPath), nil
	}
	return config.NewLoader()
}
