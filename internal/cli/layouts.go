package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/roboco-io/bmp2yuv/internal/yuv"
	"github.com/spf13/cobra"
)

var layoutDescriptions = map[yuv.Layout]string{
	yuv.LayoutStandard: "표준 BMP 픽셀 배치 (BGR 3바이트)",
	yuv.LayoutLegacy:   "이전 bmp2yuv 버전 호환 (픽셀당 4바이트 간격)",
}

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "사용 가능한 픽셀 배치 목록",
	Long: `변환 시 --layout 으로 선택할 수 있는 픽셀 배치 목록을 표시합니다.

legacy 배치는 이전 버전과 비트 단위로 동일한 출력을 만들지만 표준 BMP의
픽셀을 올바르게 읽지 않습니다. 너비가 4 이상이면 마지막 행이 픽셀 데이터를
넘어설 수 있으며 이 경우 변환은 실패합니다.

사용 예시:
  bmp2yuv convert ./photos --layout standard
  bmp2yuv convert ./photos --layout legacy`,
	Run: runLayouts,
}

func init() {
	rootCmd.AddCommand(layoutsCmd)
}

func runLayouts(cmd *cobra.Command, args []string) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "배치\t픽셀 간격\t기본값\t설명")
	fmt.Fprintln(w, "----\t--------\t-----\t----")

	def := yuv.DefaultOptions().Layout
	for _, l := range yuv.Layouts() {
		mark := ""
		if l == def {
			mark = "✓"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", l, l.PixelStride(), mark, layoutDescriptions[l])
	}
}
