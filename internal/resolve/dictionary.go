package resolve

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mozillazg/go-pinyin"

	"arbsweep/internal/match"
)

// builtinWords is the closed zh -> en vocabulary used to name new keys.
var builtinWords = map[string]string{
	"添加": "add", "删除": "delete", "移除": "remove", "编辑": "edit", "修改": "edit",
	"保存": "save", "取消": "cancel", "确认": "confirm", "确定": "ok", "关闭": "close",
	"打开": "open", "新建": "new", "创建": "create", "更新": "update", "刷新": "refresh",
	"重置": "reset", "清除": "clear", "清空": "clear", "搜索": "search", "查找": "find",
	"过滤": "filter", "筛选": "filter", "排序": "sort", "设置": "settings", "配置": "config",
	"选项": "options", "帮助": "help", "关于": "about", "信息": "info", "详情": "details",
	"标题": "title", "名称": "name", "名字": "name", "标签": "label", "描述": "description",
	"内容": "content", "文本": "text", "消息": "message", "提示": "hint", "错误": "error",
	"警告": "warning", "成功": "success", "失败": "failed", "完成": "completed", "等待": "waiting",
	"颜色": "color", "尺寸": "size", "大小": "size", "位置": "position", "样式": "style",
	"页面": "page", "图片": "image", "图像": "image", "照片": "photo", "文件": "file",
	"文档": "document", "项目": "project", "模板": "template", "预览": "preview", "导出": "export",
	"导入": "import", "备份": "backup", "恢复": "restore", "按钮": "button", "菜单": "menu",
	"列表": "list", "表格": "table", "对话框": "dialog", "窗口": "window", "面板": "panel",
	"工具栏": "toolbar", "加载": "loading", "加载中": "loading", "上传": "upload", "下载": "download",
	"同步": "sync", "分享": "share", "复制": "copy", "粘贴": "paste", "撤销": "undo",
	"重做": "redo", "选择": "select", "全选": "select all", "是": "yes", "否": "no",
	"全部": "all", "所有": "all", "部分": "partial", "详细": "detail", "简单": "simple",
	"高级": "advanced", "用户": "user", "密码": "password", "邮箱": "email", "登录": "login",
	"注册": "register", "退出": "logout", "返回": "back", "下一步": "next", "上一步": "previous",
	"提交": "submit", "输入": "input", "请输入": "enter", "首页": "home", "主页": "home",
	"个人": "profile", "账号": "account", "账户": "account", "语言": "language", "主题": "theme",
	"版本": "version", "隐私": "privacy", "政策": "policy", "协议": "agreement", "通知": "notification",
	"网络": "network", "连接": "connection", "重试": "retry", "暂无": "no", "数据": "data",
	"开始": "start", "结束": "end", "暂停": "pause", "继续": "continue", "播放": "play",
	"停止": "stop", "发送": "send", "接收": "receive", "评论": "comment", "点赞": "like",
	"收藏": "favorite", "历史": "history", "记录": "record", "时间": "time", "日期": "date",
	"今天": "today", "昨天": "yesterday", "明天": "tomorrow", "手机": "phone", "验证码": "code",
	"获取": "get", "查看": "view", "更多": "more", "管理": "manage", "权限": "permission",
	"相机": "camera", "相册": "album", "位置信息": "location", "未知": "unknown", "空": "empty",
}

// stopWords carry no meaning for a key name.
var stopWords = map[string]struct{}{
	"的": {}, "了": {}, "吗": {}, "呢": {}, "吧": {}, "啊": {}, "呀": {}, "请": {}, "您": {},
	"你": {}, "将": {}, "要": {}, "把": {}, "被": {}, "个": {}, "这": {}, "那": {}, "一": {},
	"a": {}, "an": {}, "the": {}, "to": {}, "of": {},
}

const maxTransliteration = 12

var latinWordRe = regexp.MustCompile(`[a-z0-9]+`)

// Dictionary translates UI text into English key tokens.
type Dictionary struct {
	words  map[string][]string
	maxLen int
	args   pinyin.Args
}

// NewDictionary returns the built-in vocabulary extended (or overridden) by
// extra. Extra values may hold several words ("select all").
func NewDictionary(extra map[string]string) *Dictionary {
	d := &Dictionary{words: map[string][]string{}, args: pinyin.NewArgs()}

	add := func(src, dst string) {
		tokens := splitWords(dst)
		if src == "" || len(tokens) == 0 {
			return
		}

		d.words[src] = tokens
		d.maxLen = max(d.maxLen, utf8.RuneCountInString(src))
	}

	for src, dst := range builtinWords {
		add(src, dst)
	}

	for src, dst := range extra {
		add(src, dst)
	}

	return d
}

// Tokens translates text into lowercase English tokens. Ideographic runs are
// segmented greedily by longest dictionary match; runs with no entry are
// transliterated to pinyin and truncated. Latin words are accent-folded.
//
// Examples:
//   - "删除全部" -> ["delete", "all"]
//   - "请输入名称" -> ["enter", "name"]
//   - "Save file" -> ["save", "file"]
func (d *Dictionary) Tokens(text string) []string {
	var (
		tokens  []string
		unknown []rune
		latin   strings.Builder
	)

	flushUnknown := func() {
		if len(unknown) == 0 {
			return
		}

		if t := d.transliterate(string(unknown)); t != "" {
			tokens = append(tokens, t)
		}

		unknown = unknown[:0]
	}

	flushLatin := func() {
		if latin.Len() == 0 {
			return
		}

		for _, w := range latinWordRe.FindAllString(match.FoldASCII(latin.String()), -1) {
			if _, stop := stopWords[w]; !stop {
				tokens = append(tokens, w)
			}
		}

		latin.Reset()
	}

	runes := []rune(text)
	for i := 0; i < len(runes); {
		r := runes[i]

		if !match.IsIdeograph(r) {
			flushUnknown()

			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				latin.WriteRune(r)
			} else {
				flushLatin()
			}

			i++

			continue
		}

		flushLatin()

		if words, n := d.longest(runes[i:]); n > 0 {
			flushUnknown()
			tokens = append(tokens, words...)
			i += n

			continue
		}

		if _, stop := stopWords[string(r)]; stop {
			flushUnknown()
		} else {
			unknown = append(unknown, r)
		}

		i++
	}

	flushUnknown()
	flushLatin()

	return tokens
}

func (d *Dictionary) longest(runes []rune) ([]string, int) {
	for n := min(d.maxLen, len(runes)); n > 0; n-- {
		if words, ok := d.words[string(runes[:n])]; ok {
			return words, n
		}
	}

	return nil, 0
}

func (d *Dictionary) transliterate(s string) string {
	syllables := pinyin.LazyPinyin(s, d.args)
	if len(syllables) == 0 {
		return ""
	}

	t := strings.Join(syllables, "")
	if len(t) > maxTransliteration {
		t = t[:maxTransliteration]
	}

	return t
}

// splitWords splits "select all", "select_all" or "selectAll" into lowercase
// words.
func splitWords(s string) []string {
	var (
		words   []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			words = append(words, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	prevLower := false

	for _, r := range s {
		switch {
		case unicode.IsUpper(r) && prevLower:
			flush()
			current.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			current.WriteRune(r)
		default:
			flush()
		}

		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
	}

	flush()

	return words
}
