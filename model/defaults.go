package model

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"wtpl/units"
)

const (
	DefaultFontFamily   = "Microsoft YaHei"
	DefaultFontSize     = 12.0
	DefaultColor        = "#000000"
	DefaultSystemPrompt = "你是一个专业的文档编写助手。"
	DefaultDescription  = "这是一个新的文档模板"

	// A4 in points
	DefaultPageWidth  = 595.0
	DefaultPageHeight = 842.0
	DefaultMargin     = 72.0
)

// shortIDLen is length of ids generated for unsaved objects. Anything
// longer was assigned by template library.
const shortIDLen = 9

// NewID returns short random identifier used for blocks and unsaved templates.
func NewID() string {
	u := uuid.New()
	id := strconv.FormatUint(binary.BigEndian.Uint64(u[:8]), 36)
	if len(id) < shortIDLen {
		id = strings.Repeat("0", shortIDLen-len(id)) + id
	}
	return id[len(id)-shortIDLen:]
}

// IsShortID reports whether id looks like one generated by NewID (or is empty).
func IsShortID(id string) bool {
	return len(id) <= 10
}

// DefaultFormat returns fully populated document format.
func DefaultFormat() DocumentFormat {
	return DocumentFormat{
		Font: FontSettings{
			Family: DefaultFontFamily,
			Size:   DefaultFontSize,
			Color:  DefaultColor,
		},
		Paragraph: ParagraphSettings{
			LineHeight:       1.5,
			ParagraphSpacing: 6,
			Indent: IndentSettings{
				FirstLineUnit: units.Pt,
				LeftUnit:      units.Pt,
				RightUnit:     units.Pt,
			},
			Alignment: AlignLeft,
		},
		Page: PageSettings{
			Width:  DefaultPageWidth,
			Height: DefaultPageHeight,
			Margins: MarginSettings{
				Top:    DefaultMargin,
				Bottom: DefaultMargin,
				Left:   DefaultMargin,
				Right:  DefaultMargin,
			},
			Orientation: Portrait,
		},
	}
}

// NewTemplate creates empty template with default format.
func NewTemplate(now time.Time) *Template {
	return &Template{
		ID:          NewID(),
		Name:        fmt.Sprintf("新建模板_%d%d%02d%02d", int(now.Month()), now.Day(), now.Hour(), now.Minute()),
		Description: DefaultDescription,
		Content:     []*Block{},
		Format:      DefaultFormat(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// DefaultAISettings returns session wide AI defaults.
func DefaultAISettings() *AISettings {
	return &AISettings{
		Provider:     ProviderQianwen,
		MaxKBModel:   "gpt-3.5-turbo",
		SystemPrompt: DefaultSystemPrompt,
	}
}

// NewBlock creates block of requested type with default content. AI
// settings are not assigned here, see editor.Session.Add.
func NewBlock(t BlockType, position int) *Block {
	b := &Block{
		ID:       NewID(),
		Type:     t,
		Position: position,
		Format:   BlockFormat{UseGlobalFormat: Ptr(true)},
	}
	switch t {
	case BlockTwoColumn:
		b.Title = "双栏文本"
		b.Content = TwoColumnContent{Left: "左侧文本", Right: "右侧文本"}
		b.Format.UseGlobalFormat = Ptr(false)
	case BlockImage:
		b.Title = "图片"
		b.Content = ImageContent{
			Alt:       "图片描述",
			Alignment: ImageAuto,
			Width:     Ptr(200.0),
			Height:    Ptr(150.0),
			MaxWidth:  Ptr(600.0),
			MaxHeight: Ptr(400.0),
			Border: &ImageBorder{
				Color: DefaultColor,
				Width: 1,
				Style: "solid",
			},
		}
	case BlockPageBreak:
		b.Title = "换页"
		b.Content = PageBreakContent{
			Type:     string(BlockPageBreak),
			Settings: PageBreakSettings{PageOrientation: Portrait},
		}
	case BlockTable:
		b.Title = "表格"
		b.Content = TableContent{
			Rows: [][]TableCell{
				{{}, {}},
				{{}, {}},
			},
			Style: &TableStyle{
				BorderStyle: TableBorderSolid,
				BorderWidth: Ptr(1.0),
				BorderColor: DefaultColor,
				CellPadding: Ptr(8.0),
			},
		}
	case BlockAI:
		b.Title = "AI生成内容"
		b.Content = TextContent("")
		b.AIPrompt = "请输入AI生成提示词..."
		b.Format.Style = StyleNormal
	default:
		b.Type = BlockText
		b.Title = "固定内容"
		b.Content = TextContent("请输入内容...")
		b.Format.Style = StyleNormal
	}
	return b
}

// SortedBlocks returns copy of template blocks ordered by position, original
// order is kept for equal positions.
func (t *Template) SortedBlocks() []*Block {
	blocks := make([]*Block, len(t.Content))
	copy(blocks, t.Content)
	SortByPosition(blocks)
	return blocks
}

// Block returns block with given id or nil.
func (t *Template) Block(id string) *Block {
	for _, b := range t.Content {
		if b.ID == id {
			return b
		}
	}
	return nil
}
