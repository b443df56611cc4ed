package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Format(t *testing.T) {
	inner := errors.New("boom")

	assert.Equal(t, "[GITHUB_TIMEOUT] 请求超时: boom", WrapError(ErrCodeTimeout, "请求超时", inner).Error())
	assert.Equal(t, "[INVALID_INPUT] 参数错误", NewError(ErrCodeInvalidInput, "参数错误").Error())
	assert.ErrorIs(t, WrapError(ErrCodeTimeout, "请求超时", inner), inner)
}

func TestCodeOfAndIsCode(t *testing.T) {
	inner := NewError(ErrCodeRateLimited, "限流")
	outer := WrapError(ErrCodeGitHubAPI, "搜索失败", inner)
	wrapped := fmt.Errorf("第 2 页: %w", outer)

	assert.Equal(t, ErrCodeGitHubAPI, CodeOf(wrapped))
	assert.True(t, IsCode(wrapped, ErrCodeGitHubAPI))
	assert.True(t, IsCode(wrapped, ErrCodeRateLimited))
	assert.False(t, IsCode(wrapped, ErrCodeTimeout))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.False(t, IsCode(nil, ErrCodeTimeout))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "限流", MessageOf(fmt.Errorf("x: %w", NewError(ErrCodeRateLimited, "限流"))))
	assert.Equal(t, "plain", MessageOf(errors.New("plain")))
	assert.Equal(t, "", MessageOf(nil))
}
