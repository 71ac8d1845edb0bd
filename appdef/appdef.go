// Package appdef describes the login/register web application that the harness tests: its page
// paths, the names of its form fields, and the literal messages it shows.
package appdef

const (
	LoginPage    = "login.php"
	RegisterPage = "register.php"
	IndexPage    = "index.php"
)

// Form field names.
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldUsername   = "username"
	FieldPassword   = "password"
	FieldRepassword = "repassword"
	FieldSubmit     = "submit"
)

// ErrorClass is the class of the element in which the application shows validation errors.
const ErrorClass = "alert-danger"

// Literal error messages.
const (
	MsgEmptyData        = "Data tidak boleh kosong !!"
	MsgPasswordMismatch = "Password tidak sama !!"
	MsgUsernameTaken    = "Username sudah terdaftar !!"
	MsgRegisterFailed   = "Register User Gagal !!"
	MsgLoginFailed      = "Username atau Password salah !!"
)

// Form identifies one of the application's two forms.
type Form string

const (
	LoginForm    Form = "login"
	RegisterForm Form = "register"
)

// Page returns the path of the page that shows the form.
func (f Form) Page() string {
	if f == RegisterForm {
		return RegisterPage
	}
	return LoginPage
}

// Fields returns the form's input fields in the order a user fills them in.
func (f Form) Fields() []string {
	switch f {
	case LoginForm:
		return []string{FieldUsername, FieldPassword}
	case RegisterForm:
		return []string{FieldName, FieldEmail, FieldUsername, FieldPassword, FieldRepassword}
	default:
		return nil
	}
}

// IsValid returns true for the known forms.
func (f Form) IsValid() bool {
	return f == LoginForm || f == RegisterForm
}

// LoginFailureMessages are the messages the application may show for rejected credentials.
// Deployments differ on which one they use.
func LoginFailureMessages() []string {
	return []string{MsgRegisterFailed, MsgLoginFailed}
}
