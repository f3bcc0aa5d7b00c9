// Package digest provides fixed-width hash values and the two combinators the
// labelling engine is built on.
//
// CombineOrdered and CombineUnordered work bytewise on equal-width digests.
// The constructors HashString, HashInt and HashUnencodedChars fix the byte
// encodings of their inputs so that labels are stable across platforms.
package digest
