package markdown

import "strings"

// BlockKind identifies an assembled block.
type BlockKind int

const (
	BlockBlank BlockKind = iota
	BlockHeading
	BlockParagraph
	BlockList
	BlockTable
	BlockRule
	BlockRaw
)

// List is a flat list. Items are formatted text; nesting is not supported.
type List struct {
	Ordered bool
	Items   []string
}

// Block is a structural unit of the fragment.
type Block struct {
	Kind  BlockKind
	Level int
	Text  string
	List  *List
	Table *Table
	Lines []string
}

type listState int

const (
	listNone listState = iota
	listUnordered
	listOrdered
)

// listStep says what a transition does to the open list.
type listStep struct {
	close bool
	open  bool
}

// listTransitions is indexed by [current][next].
var listTransitions = [3][3]listStep{
	listNone: {
		listNone:      {},
		listUnordered: {open: true},
		listOrdered:   {open: true},
	},
	listUnordered: {
		listNone:      {close: true},
		listUnordered: {},
		listOrdered:   {close: true, open: true},
	},
	listOrdered: {
		listNone:      {close: true},
		listUnordered: {close: true, open: true},
		listOrdered:   {},
	},
}

type assembler struct {
	blocks    []Block
	paragraph []string
	state     listState
	list      *List
}

// Assemble groups tokens into blocks: consecutive list items of one kind
// become a list, consecutive plain lines become a paragraph.
func Assemble(tokens []Token) []Block {
	a := &assembler{}
	for _, tok := range tokens {
		a.add(tok)
	}
	a.flushParagraph()
	a.moveTo(listNone)
	return a.blocks
}

func (a *assembler) add(tok Token) {
	if tok.Kind != KindPlain {
		a.flushParagraph()
	}

	next := listNone
	if tok.Kind == KindListItem {
		next = listUnordered
		if tok.Ordered {
			next = listOrdered
		}
	}
	a.moveTo(next)

	switch tok.Kind {
	case KindPlain:
		a.paragraph = append(a.paragraph, tok.Text)
	case KindListItem:
		a.list.Items = append(a.list.Items, tok.Text)
	case KindBlank:
		a.blocks = append(a.blocks, Block{Kind: BlockBlank})
	case KindHeading:
		a.blocks = append(a.blocks, Block{Kind: BlockHeading, Level: tok.Level, Text: tok.Text})
	case KindTable:
		a.blocks = append(a.blocks, Block{Kind: BlockTable, Table: tok.Table})
	case KindRule:
		a.blocks = append(a.blocks, Block{Kind: BlockRule})
	case KindRaw:
		a.blocks = append(a.blocks, Block{Kind: BlockRaw, Lines: tok.Lines})
	}
}

func (a *assembler) moveTo(next listState) {
	step := listTransitions[a.state][next]
	if step.close {
		a.blocks = append(a.blocks, Block{Kind: BlockList, List: a.list})
		a.list = nil
	}
	if step.open {
		a.list = &List{Ordered: next == listOrdered}
	}
	a.state = next
}

func (a *assembler) flushParagraph() {
	if len(a.paragraph) == 0 {
		return
	}
	text := strings.TrimSpace(strings.Join(a.paragraph, " "))
	a.paragraph = a.paragraph[:0]
	if text != "" {
		a.blocks = append(a.blocks, Block{Kind: BlockParagraph, Text: text})
	}
}
