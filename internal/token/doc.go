// Package token defines the lexical token kinds produced by the LaTeX source
// lexer for LaTeX source text.
//
// Invariants:
//   - Token.Text is a string copy of the document bytes at Token.Span.
//   - Token.Span matches Text exactly (Start..End).
//   - The lexer is total: every byte of input produces some token, and the
//     final token before EOF always closes any trailing fragment. The one
//     exception is a token longer than the lexer's length limit: it becomes
//     an ErrorToken and the input after it is skipped.
package token
