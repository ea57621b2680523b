package source

const exampleCode = `def calculate_average(numbers):
    total = 0
    for num in numbers:
        total += num
    return total / len(numbers)  # Bug: Division by zero if empty list

def unsafe_eval(user_input):
    return eval(user_input)  # Security vulnerability: Code injection

def process_data(data):
    if data == None:  # Should use 'is None'
        return []

    results = []
    for item in data:
        if item > 0:
            results.append(item * 2)
        else:
            results.append(item / 0)  # Runtime error: Division by zero

    return results

# Usage with bugs
numbers = []
average = calculate_average(numbers)  # Will crash
print(f"Average: {average}")

user_code = input("Enter code: ")
result = unsafe_eval(user_code)  # Dangerous!

data = None
processed = process_data(data)
`

// Example returns a short Python program with known bugs.
func Example() string {
	return exampleCode
}
