package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/RecoveryAshes/PageScrape/internal/models"
)

// PromptStartURL 提示用户输入起始URL
// 只从in读取一行,剩余输入留给之后的交互触发;空输入返回models.ErrNoStartURL
func PromptStartURL(in *bufio.Reader, out io.Writer) (string, error) {
	fmt.Fprintln(out, "请输入起始URL (之后可以在浏览器中自由导航):")
	fmt.Fprint(out, "URL> ")

	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("读取用户输入失败: %w", err)
	}

	startURL, err := models.NormalizeURL(line)
	if err != nil {
		if errors.Is(err, models.ErrNoStartURL) {
			return "", err
		}
		return "", fmt.Errorf("无效的起始URL: %w", err)
	}
	return startURL, nil
}
