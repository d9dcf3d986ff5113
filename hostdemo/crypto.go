// Package hostdemo is an example embedder: a thin set of host-registered
// commands proving out the Host Operations vtable's Host command variant
// (spec §4.6). It deliberately lives outside the interp/ops/builtins
// import graph -- nothing in the core engine imports it.
package hostdemo

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/digitive/crypt"

	"github.com/plume-lang/plume/interp"
	"github.com/plume-lang/plume/ops"
)

// argon2 tuning, chosen for a demo host rather than a production one --
// grounded on the teacher's own crypto.go comment that callers may tune
// rounds/cost by salt prefix, generalized to fixed constants here since
// the demo host has no wizard-permission concept to gate on.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// RegisterCrypto installs ::host::pwhash and ::host::crypt into i's
// ::host namespace, grounded on MongooseMoo-barn's builtinCrypt (algorithm
// selection by salt prefix) but split into two commands: one modern KDF
// (argon2id) and one classic crypt(3)-compatible hash, so both of the
// teacher's crypto deps get a concrete caller.
func RegisterCrypto(i *interp.Interp) {
	i.RegisterHost("::host::pwhash", hostPwhash)
	i.RegisterHost("::host::crypt", hostCrypt)
}

// hostPwhash implements `::host::pwhash password ?salt?`: argon2id with a
// random 16-byte salt if none is given, returned as "salt$hash" (both
// base64, no padding).
func hostPwhash(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) < 1 || len(args) > 2 {
		return i.Fail(`wrong # args: should be "::host::pwhash password ?salt?"`)
	}
	password := i.Ops.StringOf(args[0])

	var salt []byte
	if len(args) == 2 {
		decoded, err := base64.RawURLEncoding.DecodeString(i.Ops.StringOf(args[1]))
		if err != nil {
			return i.Fail("bad salt: " + err.Error())
		}
		salt = decoded
	} else {
		salt = make([]byte, 16)
		if _, err := rand.Read(salt); err != nil {
			return i.Fail("could not generate salt: " + err.Error())
		}
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	encoded := base64.RawURLEncoding.EncodeToString(salt) + "$" + base64.RawURLEncoding.EncodeToString(key)
	i.SetResultString(encoded)
	return interp.OK
}

// hostCrypt implements `::host::crypt password ?salt?`, a traditional
// crypt(3)-compatible hash via github.com/digitive/crypt, matching
// MongooseMoo-barn's cryptDESPlatform use of the same library on
// platforms without a native crypt(3).
func hostCrypt(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) < 1 || len(args) > 2 {
		return i.Fail(`wrong # args: should be "::host::crypt password ?salt?"`)
	}
	password := i.Ops.StringOf(args[0])

	salt := "$1$" + randomSaltChars(8)
	if len(args) == 2 {
		salt = i.Ops.StringOf(args[1])
	}

	hashed, err := crypt.Crypt(password, salt)
	if err != nil {
		return i.Fail("crypt failed: " + err.Error())
	}
	i.SetResultString(hashed)
	return interp.OK
}

const saltAlphabet = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

func randomSaltChars(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return strings.Repeat("a", n)
	}
	var b strings.Builder
	for _, c := range buf {
		b.WriteByte(saltAlphabet[int(c)%len(saltAlphabet)])
	}
	return b.String()
}
