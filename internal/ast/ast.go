// Package ast defines the node types produced by internal/parser (spec
// §4.3): script, global-var-decl, function-decl, state-decl,
// event-handler, block, statements and expressions.
//
// Shape (a closed Node/Stmt/Expr interface family, each concrete node
// carrying its own Span) is grounded on the teacher's
// internal/parser/ast.go; the node set itself is LSL's grammar, not
// Orizon's.
package ast

import "github.com/lsl-tools/lslintel/internal/position"

// Node is implemented by every AST node.
type Node interface {
	Span() position.Span
}

// Stmt is implemented by every statement-level node, including the two
// global declaration forms (VarDecl, FunctionDecl) that appear directly
// under a Script.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression-level node.
type Expr interface {
	Node
	exprNode()
}

// Script is the root node: the ordered list of global declarations
// (variables and functions, interleaved as written) followed by one or
// more state declarations, the first of which must be "default".
type Script struct {
	Sp      position.Span
	Globals []Stmt
	States  []*StateDecl
}

func (n *Script) Span() position.Span { return n.Sp }

// Param is one declared parameter of a function or event handler.
type Param struct {
	Sp       position.Span
	Type     string
	Name     string
	NameSpan position.Span
}

// VarDecl is a variable declaration, global or local depending on where
// it appears in the tree (spec §4.3: "global-var-decl" /
// "local-var-decl" are the same shape).
type VarDecl struct {
	Sp       position.Span
	Type     string
	Name     string
	NameSpan position.Span
	Init     Expr // nil if uninitialized
}

func (n *VarDecl) Span() position.Span { return n.Sp }
func (n *VarDecl) stmtNode()           {}

// FunctionDecl is a user-defined global function declaration.
type FunctionDecl struct {
	Sp         position.Span
	ReturnType string // "" means no declared return type (void)
	Name       string
	NameSpan   position.Span
	Params     []*Param
	Body       *Block
}

func (n *FunctionDecl) Span() position.Span { return n.Sp }
func (n *FunctionDecl) stmtNode()           {}

// StateDecl is one state block ("default" or a named state), holding
// its event handlers.
type StateDecl struct {
	Sp       position.Span
	Name     string
	NameSpan position.Span
	Events   []*EventHandler
}

// EventHandler is one event handler inside a state.
type EventHandler struct {
	Sp       position.Span
	Name     string
	NameSpan position.Span
	Params   []*Param
	Body     *Block
}

// Block is a brace-delimited statement list.
type Block struct {
	Sp    position.Span
	Stmts []Stmt
}

func (n *Block) Span() position.Span { return n.Sp }
func (n *Block) stmtNode()           {}

// ====== Statements ======

// IfStmt is "if (cond) then [else else_]".
type IfStmt struct {
	Sp   position.Span
	Cond Expr
	Then Stmt
	Else Stmt // nil if no else clause
}

func (n *IfStmt) Span() position.Span { return n.Sp }
func (n *IfStmt) stmtNode()           {}

// WhileStmt is "while (cond) body".
type WhileStmt struct {
	Sp   position.Span
	Cond Expr
	Body Stmt
}

func (n *WhileStmt) Span() position.Span { return n.Sp }
func (n *WhileStmt) stmtNode()           {}

// DoWhileStmt is "do body while (cond);".
type DoWhileStmt struct {
	Sp   position.Span
	Body Stmt
	Cond Expr
}

func (n *DoWhileStmt) Span() position.Span { return n.Sp }
func (n *DoWhileStmt) stmtNode()           {}

// ForStmt is "for (init; cond; post) body", where init and post are
// comma-separated expression lists per LSL's C-derived grammar.
type ForStmt struct {
	Sp   position.Span
	Init []Expr
	Cond Expr // nil means "always true"
	Post []Expr
	Body Stmt
}

func (n *ForStmt) Span() position.Span { return n.Sp }
func (n *ForStmt) stmtNode()           {}

// ReturnStmt is "return [value];".
type ReturnStmt struct {
	Sp    position.Span
	Value Expr // nil for a bare return
}

func (n *ReturnStmt) Span() position.Span { return n.Sp }
func (n *ReturnStmt) stmtNode()           {}

// JumpStmt is "jump label;".
type JumpStmt struct {
	Sp    position.Span
	Label string
}

func (n *JumpStmt) Span() position.Span { return n.Sp }
func (n *JumpStmt) stmtNode()           {}

// LabelStmt is "@label;".
type LabelStmt struct {
	Sp   position.Span
	Name string
}

func (n *LabelStmt) Span() position.Span { return n.Sp }
func (n *LabelStmt) stmtNode()           {}

// StateChangeStmt is "state name;" or "state default;".
type StateChangeStmt struct {
	Sp   position.Span
	Name string
}

func (n *StateChangeStmt) Span() position.Span { return n.Sp }
func (n *StateChangeStmt) stmtNode()           {}

// ExprStmt wraps a bare expression used as a statement.
type ExprStmt struct {
	Sp position.Span
	X  Expr
}

func (n *ExprStmt) Span() position.Span { return n.Sp }
func (n *ExprStmt) stmtNode()           {}

// EmptyStmt is a bare ";".
type EmptyStmt struct {
	Sp position.Span
}

func (n *EmptyStmt) Span() position.Span { return n.Sp }
func (n *EmptyStmt) stmtNode()           {}

// ====== Expressions ======

// IntegerLit is an integer literal, including hex forms.
type IntegerLit struct {
	Sp    position.Span
	Value string
}

func (n *IntegerLit) Span() position.Span { return n.Sp }
func (n *IntegerLit) exprNode()           {}

// FloatLit is a floating-point literal.
type FloatLit struct {
	Sp    position.Span
	Value string
}

func (n *FloatLit) Span() position.Span { return n.Sp }
func (n *FloatLit) exprNode()           {}

// StringLit is a string literal, value holding the raw quoted text.
type StringLit struct {
	Sp    position.Span
	Value string
}

func (n *StringLit) Span() position.Span { return n.Sp }
func (n *StringLit) exprNode()           {}

// VectorLit is "<x, y, z>".
type VectorLit struct {
	Sp      position.Span
	X, Y, Z Expr
}

func (n *VectorLit) Span() position.Span { return n.Sp }
func (n *VectorLit) exprNode()           {}

// RotationLit is "<x, y, z, s>".
type RotationLit struct {
	Sp         position.Span
	X, Y, Z, S Expr
}

func (n *RotationLit) Span() position.Span { return n.Sp }
func (n *RotationLit) exprNode()           {}

// ListLit is "[e1, e2, ...]".
type ListLit struct {
	Sp       position.Span
	Elements []Expr
}

func (n *ListLit) Span() position.Span { return n.Sp }
func (n *ListLit) exprNode()           {}

// Identifier is a bare name reference.
type Identifier struct {
	Sp   position.Span
	Name string
}

func (n *Identifier) Span() position.Span { return n.Sp }
func (n *Identifier) exprNode()           {}

// CallExpr is "callee(args...)".
type CallExpr struct {
	Sp         position.Span
	Callee     string
	CalleeSpan position.Span
	Args       []Expr
}

func (n *CallExpr) Span() position.Span { return n.Sp }
func (n *CallExpr) exprNode()           {}

// IndexExpr is "x[index]" (reserved by spec §4.3's closed expression-kind
// list; LSL's built-in types have no native indexing operator today, but
// the node exists so a future list-indexing sugar has somewhere to land).
type IndexExpr struct {
	Sp    position.Span
	X     Expr
	Index Expr
}

func (n *IndexExpr) Span() position.Span { return n.Sp }
func (n *IndexExpr) exprNode()           {}

// MemberExpr is "x.member" (vector/rotation component access: .x .y .z .s).
type MemberExpr struct {
	Sp         position.Span
	X          Expr
	Member     string
	MemberSpan position.Span
}

func (n *MemberExpr) Span() position.Span { return n.Sp }
func (n *MemberExpr) exprNode()           {}

// UnaryExpr is a prefix "!x", "~x", "-x" or "+x".
type UnaryExpr struct {
	Sp position.Span
	Op string
	X  Expr
}

func (n *UnaryExpr) Span() position.Span { return n.Sp }
func (n *UnaryExpr) exprNode()           {}

// BinaryExpr is any left-associative infix operator expression.
type BinaryExpr struct {
	Sp          position.Span
	Op          string
	Left, Right Expr
}

func (n *BinaryExpr) Span() position.Span { return n.Sp }
func (n *BinaryExpr) exprNode()           {}

// AssignExpr is "target op= value" for op in {"", "+", "-", "*", "/", "%",
// "<<", ">>"} ("" meaning plain "=").
type AssignExpr struct {
	Sp     position.Span
	Op     string
	Target Expr
	Value  Expr
}

func (n *AssignExpr) Span() position.Span { return n.Sp }
func (n *AssignExpr) exprNode()           {}

// IncDecExpr is "++x"/"--x" (Prefix true) or "x++"/"x--" (Prefix false).
type IncDecExpr struct {
	Sp     position.Span
	Op     string
	X      Expr
	Prefix bool
}

func (n *IncDecExpr) Span() position.Span { return n.Sp }
func (n *IncDecExpr) exprNode()           {}
