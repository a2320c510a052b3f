// Package validator checks media paths against Windows file naming rules and
// proposes compliant file names.
//
// Validate applies every rule to a path and returns all violations; no rule
// short-circuits another. Rules look at the file name (the text after the
// last "/") except the path length rule and the padded segment rule, which
// look at the whole path. Lengths are counted in runes.
//
// Suggest runs a fixed normalization pipeline over the file name:
//
//  1. replace each of < > : " | ? * \ / with "_"
//  2. drop control characters (below U+0020)
//  3. strip trailing periods and spaces from the name and from the stem
//  4. append "_file" to a reserved device name stem (CON, PRN, AUX, NUL,
//     COM1-9, LPT1-9)
//  5. truncate the stem so the name fits in 255 runes, keeping the extension
//  6. collapse runs of "_" into one
//  7. strip leading and trailing "_" from the stem
//
// The pipeline repeats until the name stops changing, so a suggestion is
// always a fixed point: calling Suggest on the renamed path proposes
// nothing. A stem that normalizes to nothing becomes
// "file".
//
// The stem and extension are split at the last "."; leading dots never start
// an extension, so ".hidden" has no extension.
package validator
