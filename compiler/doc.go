/*

Process of compilation

Program Text ->
	tokenize ->
Token Sequence ->
	resolve ->
Program Model (tokens + loop pairing) ->
	generate ->
LLVM IR Text ->
	llc / clang ->
Native Executable

Program Model ->
	exec ->
Effects on stdin/stdout

*/
package compiler
