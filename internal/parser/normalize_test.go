package parser

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold", `\textbf{重点}内容`, "重点内容"},
		{"nested wrappers", `\textbf{\emph{x}} y`, "x y"},
		{"answer label", `\ansline{B}`, "答案：B"},
		{"explanation label", `\expline{按 \textbf{70} 字计费}`, "解释：按 70 字计费"},
		{"inline math", `$a \leq b$`, "a ≤ b"},
		{"implies", `$A \Rightarrow B$`, "A ⇒ B"},
		{"display math", `前 $$x \times y$$ 后`, "前 x × y 后"},
		{"unknown math macro", `$\alpha + 1$`, "+ 1"},
		{"escaped percent", `100\%`, "100%"},
		{"escaped dollar", `\$5`, "＄5"},
		{"tie", `a~b`, "a b"},
		{"forced space", `a\,b`, "a b"},
		{"vspace", `\vspace{2mm}正文`, "正文"},
		{"color", `\color{red}警告`, "警告"},
		{"residual command", `\unknown[opt]{arg} tail`, "arg tail"},
		{"par", `一\par 二`, "一 二"},
		{"whitespace", "  a \n\t b  ", "a b"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		`\textbf{A.} 选项 \ansline{AB}\par \expline{见 $x \geq 1$}`,
		`\$\$ 不是公式 \$`,
		`a \\ b \{c\} ~ d`,
		`\textbf{未闭合`,
		`$ 单个美元`,
		`\( 括号 \)`,
		`尾部反斜杠 \`,
		`\fontsize{10}{12}\selectfont 字号`,
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
