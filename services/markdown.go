package services

import "strings"

// markdownV2Specials are the characters Telegram requires escaped in
// regular MarkdownV2 text.
const markdownV2Specials = "_*[]()~`>#+-=|{}.!\\"

// escapeMarkdownV2 escapes model output for Telegram's MarkdownV2
// parse mode while keeping well-formed constructs renderable: fenced
// and inline code spans are passed through (backslashes doubled), and
// [text](url) links keep their structure with the text part escaped
// and only ')' and '\' escaped inside the url. Unmatched backticks and
// broken links fall back to plain escaping.
func escapeMarkdownV2(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if strings.HasPrefix(s[i:], "```") {
			if end := strings.Index(s[i+3:], "```"); end >= 0 {
				b.WriteString(escapeCodeSpan(s[i : i+3+end+3]))
				i += 3 + end + 3
				continue
			}
			b.WriteString("\\`\\`\\`")
			i += 3
			continue
		}

		c := s[i]
		if c == '`' {
			if end := strings.IndexByte(s[i+1:], '`'); end >= 0 {
				b.WriteString(escapeCodeSpan(s[i : i+1+end+1]))
				i += 1 + end + 1
				continue
			}
			b.WriteString("\\`")
			i++
			continue
		}

		if c == '[' {
			if text, url, n, ok := parseMarkdownLink(s[i:]); ok {
				b.WriteByte('[')
				b.WriteString(escapePlain(text))
				b.WriteString("](")
				b.WriteString(escapeURL(url))
				b.WriteByte(')')
				i += n
				continue
			}
		}

		writeEscapedByte(&b, c)
		i++
	}
	return b.String()
}

// escapeCodeSpan keeps a code span intact; only backslashes need
// doubling inside code per the MarkdownV2 rules.
func escapeCodeSpan(span string) string {
	return strings.ReplaceAll(span, `\`, `\\`)
}

func escapePlain(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		writeEscapedByte(&b, s[i])
	}
	return b.String()
}

func escapeURL(url string) string {
	var b strings.Builder
	for i := 0; i < len(url); i++ {
		if url[i] == ')' || url[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(url[i])
	}
	return b.String()
}

func writeEscapedByte(b *strings.Builder, c byte) {
	if strings.IndexByte(markdownV2Specials, c) >= 0 {
		b.WriteByte('\\')
	}
	b.WriteByte(c)
}

// parseMarkdownLink recognizes [text](url) at the start of s. The url
// ends at the parenthesis that balances the opening one, so urls with
// embedded parentheses survive.
func parseMarkdownLink(s string) (text, url string, n int, ok bool) {
	closing := strings.IndexByte(s, ']')
	if closing < 0 || closing+1 >= len(s) || s[closing+1] != '(' {
		return "", "", 0, false
	}
	depth := 1
	for j := closing + 2; j < len(s); j++ {
		switch s[j] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[1:closing], s[closing+2 : j], j + 1, true
			}
		}
	}
	return "", "", 0, false
}
